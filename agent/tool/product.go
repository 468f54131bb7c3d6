package tool

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/schema"

	"github.com/alltimesound/customer-service-agent/agent/contract"
	"github.com/alltimesound/customer-service-agent/agent/store"
)

func productTools(deps *catalogDeps) []contract.Tool {
	return []contract.Tool{
		searchProducts(deps),
		getProductDetails(deps),
		compareProducts(deps),
		checkProductAvailability(deps),
		getProductSpecifications(deps),
		checkItemAvailability(deps),
	}
}

func loadProduct(ctx context.Context, deps *catalogDeps, productID string) (*store.Product, Result, bool) {
	product, err := deps.store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fail("product %s not found", productID), false
		}
		return nil, Result{}, false
	}
	return product, Result{}, true
}

func searchProducts(deps *catalogDeps) contract.Tool {
	return newTool(
		"search_products",
		"Search the catalog by name or description, optionally filtered by category.",
		map[string]*schema.ParameterInfo{
			"query":    {Type: schema.String, Desc: "Search terms"},
			"category": {Type: schema.String, Desc: "One of vinyl, cd, accessories"},
			"limit":    {Type: schema.Integer, Desc: "Maximum results, default 10"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			products, err := deps.store.SearchProducts(ctx,
				stringArg(args, "query"),
				stringArg(args, "category"),
				intArg(args, "limit", 10),
			)
			if err != nil {
				return nil, err
			}
			return ok(products), nil
		},
	)
}

func getProductDetails(deps *catalogDeps) contract.Tool {
	return newTool(
		"get_product_details",
		"Get full details for one product.",
		map[string]*schema.ParameterInfo{
			"product_id": {Type: schema.String, Desc: "Product id", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			product, denial, found := loadProduct(ctx, deps, stringArg(args, "product_id"))
			if !found {
				return denial, nil
			}
			return ok(product), nil
		},
	)
}

func compareProducts(deps *catalogDeps) contract.Tool {
	return newTool(
		"compare_products",
		"Compare two products side by side on price, rating, and availability.",
		map[string]*schema.ParameterInfo{
			"product_id_a": {Type: schema.String, Desc: "First product id", Required: true},
			"product_id_b": {Type: schema.String, Desc: "Second product id", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			a, denial, found := loadProduct(ctx, deps, stringArg(args, "product_id_a"))
			if !found {
				return denial, nil
			}
			b, denial, found := loadProduct(ctx, deps, stringArg(args, "product_id_b"))
			if !found {
				return denial, nil
			}
			return ok(map[string]any{
				"products":      []*store.Product{a, b},
				"cheaper":       cheaperOf(a, b).ID,
				"higher_rated":  higherRatedOf(a, b).ID,
				"both_in_stock": a.StockQuantity > 0 && b.StockQuantity > 0,
			}), nil
		},
	)
}

func cheaperOf(a, b *store.Product) *store.Product {
	if b.Price < a.Price {
		return b
	}
	return a
}

func higherRatedOf(a, b *store.Product) *store.Product {
	if b.Rating > a.Rating {
		return b
	}
	return a
}

func checkProductAvailability(deps *catalogDeps) contract.Tool {
	return newTool(
		"check_product_availability",
		"Check whether a product is in stock and how many units remain.",
		map[string]*schema.ParameterInfo{
			"product_id": {Type: schema.String, Desc: "Product id", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			product, denial, found := loadProduct(ctx, deps, stringArg(args, "product_id"))
			if !found {
				return denial, nil
			}
			return ok(map[string]any{
				"product_id": product.ID,
				"in_stock":   product.StockQuantity > 0,
				"quantity":   product.StockQuantity,
			}), nil
		},
	)
}

// getProductSpecifications returns fabricated format specs; the catalog
// does not model per-format metadata.
func getProductSpecifications(deps *catalogDeps) contract.Tool {
	return newTool(
		"get_product_specifications",
		"Get physical and format specifications for a product.",
		map[string]*schema.ParameterInfo{
			"product_id": {Type: schema.String, Desc: "Product id", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			product, denial, found := loadProduct(ctx, deps, stringArg(args, "product_id"))
			if !found {
				return denial, nil
			}
			specs := map[string]any{"product_id": product.ID, "category": product.Category}
			switch product.Category {
			case "vinyl":
				specs["format"] = "12-inch LP"
				specs["weight"] = "180g"
				specs["speed"] = "33 1/3 RPM"
			case "cd":
				specs["format"] = "compact disc"
				specs["discs"] = 1
			default:
				specs["format"] = "accessory"
			}
			return ok(specs), nil
		},
	)
}

// checkItemAvailability is the quick variant the coordinator's prompts
// reference: product name or id in, a yes/no with quantity out.
func checkItemAvailability(deps *catalogDeps) contract.Tool {
	return newTool(
		"check_item_availability",
		"Check stock for an item by product id or name.",
		map[string]*schema.ParameterInfo{
			"item": {Type: schema.String, Desc: "Product id or name", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			item := stringArg(args, "item")
			if product, err := deps.store.GetProduct(ctx, item); err == nil {
				return ok(map[string]any{
					"product_id": product.ID,
					"in_stock":   product.StockQuantity > 0,
					"quantity":   product.StockQuantity,
				}), nil
			}
			matches, err := deps.store.SearchProducts(ctx, item, "", 1)
			if err != nil {
				return nil, err
			}
			if len(matches) == 0 {
				return fail("no product matches %q", item), nil
			}
			product := matches[0]
			return ok(map[string]any{
				"product_id": product.ID,
				"in_stock":   product.StockQuantity > 0,
				"quantity":   product.StockQuantity,
			}), nil
		},
	)
}
