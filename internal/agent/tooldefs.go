package agent

import "github.com/ordena/ordena/internal/reasoner"

// Tool schemas per handler. Executors live in bindings.go.

var productTools = []reasoner.Tool{
	{
		Name:        "get_products",
		Description: "Get all available products from the database.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "get_product",
		Description: "Get detailed information about a specific product.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"product_id": map[string]any{"type": "string", "description": "The ID of the product to search for"},
			},
			"required": []string{"product_id"},
		},
	},
	{
		Name:        "create_product",
		Description: "Create a new product in the database.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":  map[string]any{"type": "string"},
				"brand": map[string]any{"type": "string"},
				"price": map[string]any{"type": "number"},
			},
			"required": []string{"name", "brand", "price"},
		},
	},
}

var salesTools = []reasoner.Tool{
	{
		Name:        "create_purchase",
		Description: "Record a new purchase with its product lines.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"amount":           map[string]any{"type": "number"},
				"purchase_type_id": map[string]any{"type": "string"},
				"products": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"product_id": map[string]any{"type": "string"},
							"quantity":   map[string]any{"type": "integer"},
							"unit_price": map[string]any{"type": "number"},
						},
						"required": []string{"product_id", "quantity", "unit_price"},
					},
				},
			},
			"required": []string{"amount", "purchase_type_id"},
		},
	},
	{
		Name:        "get_purchase_types",
		Description: "Get all available purchase types.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "generate_sales_report",
		Description: "Generate a sales report for a specific period.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"start_date": map[string]any{"type": "string", "description": "ISO date, e.g. 2026-01-01"},
				"end_date":   map[string]any{"type": "string", "description": "ISO date, e.g. 2026-01-31"},
			},
			"required": []string{"start_date", "end_date"},
		},
	},
	{
		Name:        "create_payment_link",
		Description: "Create a hosted checkout link for the given amount.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"amount":      map[string]any{"type": "number"},
				"title":       map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
			},
			"required": []string{"amount", "title"},
		},
	},
}
