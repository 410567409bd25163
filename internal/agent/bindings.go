package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ordena/ordena/internal/payments"
	"github.com/ordena/ordena/internal/store"
	"github.com/ordena/ordena/internal/tools"
)

// RegisterStoreTools wires the datastore operations into the registry.
func RegisterStoreTools(reg *tools.Registry, st store.Store) {
	reg.MustRegister("get_products", func(ctx context.Context, args json.RawMessage) (string, error) {
		products, err := st.ListProducts(ctx)
		if err != nil {
			return "", fmt.Errorf("error getting products: %w", err)
		}
		return marshalJSON(products)
	})

	reg.MustRegister("get_product", func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			ProductID string `json:"product_id"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		product, err := st.GetProduct(ctx, in.ProductID)
		if err != nil {
			return "", fmt.Errorf("error getting product: %w", err)
		}
		if product == nil {
			return "Product not found", nil
		}
		return marshalJSON(product)
	})

	reg.MustRegister("create_product", func(ctx context.Context, args json.RawMessage) (string, error) {
		var in store.ProductInput
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		product, err := st.CreateProduct(ctx, in)
		if err != nil {
			return "", fmt.Errorf("error creating product: %w", err)
		}
		return fmt.Sprintf("Product successfully created: %s - %s", product.Name, product.Brand), nil
	})

	reg.MustRegister("create_purchase", func(ctx context.Context, args json.RawMessage) (string, error) {
		var in store.PurchaseInput
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		purchase, err := st.CreatePurchase(ctx, in)
		if err != nil {
			return "", fmt.Errorf("error creating purchase: %w", err)
		}
		return fmt.Sprintf("Purchase created successfully. ID: %s", purchase.ID), nil
	})

	reg.MustRegister("get_purchase_types", func(ctx context.Context, args json.RawMessage) (string, error) {
		types, err := st.ListPurchaseTypes(ctx)
		if err != nil {
			return "", fmt.Errorf("error getting purchase types: %w", err)
		}
		return marshalJSON(types)
	})

	reg.MustRegister("generate_sales_report", func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			StartDate string `json:"start_date"`
			EndDate   string `json:"end_date"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		start, err := parseDate(in.StartDate)
		if err != nil {
			return "", fmt.Errorf("invalid start_date: %w", err)
		}
		end, err := parseDate(in.EndDate)
		if err != nil {
			return "", fmt.Errorf("invalid end_date: %w", err)
		}
		report, err := st.SalesReport(ctx, start, end)
		if err != nil {
			return "", fmt.Errorf("error generating report: %w", err)
		}
		return marshalJSON(report)
	})
}

// RegisterPaymentTools wires the payment link provider into the registry.
func RegisterPaymentTools(reg *tools.Registry, provider payments.Provider) {
	reg.MustRegister("create_payment_link", func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			Amount      float64 `json:"amount"`
			Title       string  `json:"title"`
			Description string  `json:"description"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		url, err := provider.CreateLink(ctx, payments.LinkRequest{
			Amount:      in.Amount,
			Title:       in.Title,
			Description: in.Description,
		})
		if err != nil {
			return "", fmt.Errorf("error creating payment link: %w", err)
		}
		return url, nil
	})
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
