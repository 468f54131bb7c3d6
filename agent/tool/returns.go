package tool

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/alltimesound/customer-service-agent/agent/contract"
	"github.com/alltimesound/customer-service-agent/agent/store"
)

func returnsTools(deps *catalogDeps) []contract.Tool {
	return []contract.Tool{
		checkAttachments(deps),
		issueInstantRefund(deps),
		createPrepaidLabel(deps),
		createReplacementOrder(deps),
		logIssue(deps),
	}
}

// checkAttachments reports whether the customer attached photos of the
// damaged item to the conversation. There is no media pipeline; the answer
// is fabricated and always affirmative so the flow can continue.
func checkAttachments(deps *catalogDeps) contract.Tool {
	return newTool(
		"check_attachments",
		"Check whether the customer attached photos of the damaged or wrong item.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			return ok(map[string]any{
				"has_attachments": true,
				"count":           1,
				"kinds":           []string{"photo"},
			}), nil
		},
	)
}

func issueInstantRefund(deps *catalogDeps) contract.Tool {
	return newTool(
		"issue_instant_refund",
		"Issue an instant refund for a delivered order with a damaged or wrong item.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"order_id":    {Type: schema.String, Desc: "Order id", Required: true},
			"reason":      {Type: schema.String, Desc: "Refund reason", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			order, denial, err := ownedOrder(ctx, deps, args)
			if err != nil {
				return nil, err
			}
			if order == nil {
				return denial, nil
			}
			if order.Status != store.OrderDelivered {
				return fail("instant refunds only apply to delivered orders; order %s is %s", order.ID, order.Status), nil
			}
			return okMsg("instant refund issued", map[string]any{
				"refund_id": "ref-" + deps.newID(),
				"order_id":  order.ID,
				"amount":    order.Total,
				"issued_at": deps.now().UTC().Format(time.RFC3339),
			}), nil
		},
	)
}

func createPrepaidLabel(deps *catalogDeps) contract.Tool {
	return newTool(
		"create_prepaid_label",
		"Create a prepaid return shipping label and email it to the customer.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"order_id":    {Type: schema.String, Desc: "Order id being returned", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			order, denial, err := ownedOrder(ctx, deps, args)
			if err != nil {
				return nil, err
			}
			if order == nil {
				return denial, nil
			}
			labelID := "lbl-" + deps.newID()
			return okMsg("prepaid label created and emailed", map[string]any{
				"label_id":   labelID,
				"order_id":   order.ID,
				"carrier":    "SoundShip Express",
				"expires_on": deps.now().AddDate(0, 0, 14).Format(time.DateOnly),
			}), nil
		},
	)
}

func createReplacementOrder(deps *catalogDeps) contract.Tool {
	return newTool(
		"create_replacement_order",
		"Create a zero-cost replacement order mirroring the original's items.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"order_id":    {Type: schema.String, Desc: "Order id being replaced", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			order, denial, err := ownedOrder(ctx, deps, args)
			if err != nil {
				return nil, err
			}
			if order == nil {
				return denial, nil
			}
			replacement := &store.Order{
				ID:         "ord-" + deps.newID(),
				CustomerID: order.CustomerID,
				Date:       deps.now().Format(time.DateOnly),
				Status:     store.OrderProcessing,
				Total:      0,
				Items:      order.Items,
			}
			if err := deps.store.InsertOrder(ctx, replacement); err != nil {
				return nil, err
			}
			return okMsg("replacement order created", replacement), nil
		},
	)
}

func logIssue(deps *catalogDeps) contract.Tool {
	return newTool(
		"log_issue",
		"Record a quality or fulfillment issue against an order for follow-up.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"order_id":    {Type: schema.String, Desc: "Order id the issue concerns"},
			"description": {Type: schema.String, Desc: "What went wrong", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			description := stringArg(args, "description")
			if description == "" {
				return fail("a description is required"), nil
			}
			return okMsg("issue logged", map[string]any{
				"issue_id":    "iss-" + deps.newID(),
				"order_id":    stringArg(args, "order_id"),
				"description": description,
				"logged_at":   deps.now().UTC().Format(time.RFC3339),
			}), nil
		},
	)
}
