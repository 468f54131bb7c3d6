package tool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/alltimesound/customer-service-agent/agent/contract"
)

func paymentTools(deps *catalogDeps) []contract.Tool {
	return []contract.Tool{
		getPaymentMethods(deps),
		removePaymentMethod(deps),
		processRefund(deps),
		getInvoice(deps),
		disputeCharge(deps),
		applyPromoCode(deps),
		getBillingHistory(deps),
	}
}

func getPaymentMethods(deps *catalogDeps) contract.Tool {
	return newTool(
		"get_payment_methods",
		"List the payment methods saved on the customer's account.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			methods, err := deps.store.ListPaymentMethods(ctx, stringArg(args, "customer_id"))
			if err != nil {
				return nil, err
			}
			return ok(methods), nil
		},
	)
}

func removePaymentMethod(deps *catalogDeps) contract.Tool {
	return newTool(
		"remove_payment_method",
		"Remove a saved payment method from the customer's account.",
		map[string]*schema.ParameterInfo{
			"customer_id":       {Type: schema.String, Desc: "Customer id", Required: true},
			"payment_method_id": {Type: schema.String, Desc: "Payment method id", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			id := stringArg(args, "payment_method_id")
			removed, err := deps.store.DeletePaymentMethod(ctx, stringArg(args, "customer_id"), id)
			if err != nil {
				return nil, err
			}
			if !removed {
				return fail("payment method %s not found", id), nil
			}
			return okMsg("payment method removed", nil), nil
		},
	)
}

func processRefund(deps *catalogDeps) contract.Tool {
	return newTool(
		"process_refund",
		"Refund part or all of an order's total to the original payment method.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"order_id":    {Type: schema.String, Desc: "Order id", Required: true},
			"amount":      {Type: schema.Number, Desc: "Amount to refund; omit for the full total"},
			"reason":      {Type: schema.String, Desc: "Refund reason"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			order, denial, err := ownedOrder(ctx, deps, args)
			if err != nil {
				return nil, err
			}
			if order == nil {
				return denial, nil
			}
			amount := floatArg(args, "amount", order.Total)
			if amount <= 0 || amount > order.Total {
				return fail("refund amount must be between 0 and %.2f", order.Total), nil
			}
			return okMsg("refund processed", map[string]any{
				"refund_id":    "ref-" + deps.newID(),
				"order_id":     order.ID,
				"amount":       amount,
				"processed_at": deps.now().UTC().Format(time.RFC3339),
				"arrival_hint": "3-5 business days",
			}), nil
		},
	)
}

func getInvoice(deps *catalogDeps) contract.Tool {
	return newTool(
		"get_invoice",
		"Produce the invoice for an order.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"order_id":    {Type: schema.String, Desc: "Order id", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			order, denial, err := ownedOrder(ctx, deps, args)
			if err != nil {
				return nil, err
			}
			if order == nil {
				return denial, nil
			}
			return ok(map[string]any{
				"invoice_id": fmt.Sprintf("inv-%s", order.ID),
				"order_id":   order.ID,
				"date":       order.Date,
				"items":      order.Items,
				"total":      order.Total,
				"currency":   "USD",
			}), nil
		},
	)
}

func disputeCharge(deps *catalogDeps) contract.Tool {
	return newTool(
		"dispute_charge",
		"Open a dispute case for a charge the customer does not recognize.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"order_id":    {Type: schema.String, Desc: "Order id of the disputed charge", Required: true},
			"reason":      {Type: schema.String, Desc: "Why the charge is disputed", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			order, denial, err := ownedOrder(ctx, deps, args)
			if err != nil {
				return nil, err
			}
			if order == nil {
				return denial, nil
			}
			reason := stringArg(args, "reason")
			if reason == "" {
				return fail("a dispute reason is required"), nil
			}
			return okMsg("dispute opened", map[string]any{
				"dispute_id":      "dsp-" + deps.newID(),
				"order_id":        order.ID,
				"amount":          order.Total,
				"reason":          reason,
				"resolution_hint": "7-10 business days",
			}), nil
		},
	)
}

func applyPromoCode(deps *catalogDeps) contract.Tool {
	return newTool(
		"apply_promo_code",
		"Apply a promotional code to the customer's next purchase.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"code":        {Type: schema.String, Desc: "Promo code", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			code := stringArg(args, "code")
			discount, known := promoCodes[strings.ToLower(code)]
			if !known {
				return fail("promo code %s is not valid", code), nil
			}
			return okMsg("promo code applied", map[string]any{
				"code":     strings.ToLower(code),
				"discount": discount,
			}), nil
		},
	)
}

// promoCodes are the currently running promotions.
var promoCodes = map[string]string{
	"vinyl10":   "10% off vinyl",
	"freeship":  "free standard shipping",
	"welcome5":  "5 USD off first order",
	"loyallove": "double loyalty points",
}

func getBillingHistory(deps *catalogDeps) contract.Tool {
	return newTool(
		"get_billing_history",
		"List the customer's past charges, newest first.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			orders, err := deps.store.ListOrders(ctx, stringArg(args, "customer_id"))
			if err != nil {
				return nil, err
			}
			charges := make([]map[string]any, 0, len(orders))
			for _, order := range orders {
				charges = append(charges, map[string]any{
					"order_id": order.ID,
					"date":     order.Date,
					"amount":   order.Total,
					"status":   order.Status,
				})
			}
			return ok(charges), nil
		},
	)
}
