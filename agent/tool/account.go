package tool

import (
	"context"
	"errors"
	"reflect"

	"github.com/cloudwego/eino/schema"

	"github.com/alltimesound/customer-service-agent/agent/contract"
	"github.com/alltimesound/customer-service-agent/agent/store"
)

func accountTools(deps *catalogDeps) []contract.Tool {
	return []contract.Tool{
		resetPassword(deps),
		updateEmail(deps),
		manageAddresses(deps),
		getLoyaltyBalance(deps),
		deleteAccount(deps),
		unlockAccount(deps),
		verifyIdentity(deps),
		manageEmailSubscriptions(deps),
		updateCommunicationPreferences(deps),
	}
}

func resetPassword(deps *catalogDeps) contract.Tool {
	return newTool(
		"reset_password",
		"Send a password reset link to the customer's registered email address.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			customer, err := deps.store.GetCustomer(ctx, stringArg(args, "customer_id"))
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fail("customer not found"), nil
				}
				return nil, err
			}
			return okMsg("password reset link sent", map[string]any{
				"email":      customer.Email,
				"expires_in": "30m",
			}), nil
		},
	)
}

func updateEmail(deps *catalogDeps) contract.Tool {
	return newTool(
		"update_email",
		"Change the email address on the customer's account.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"new_email":   {Type: schema.String, Desc: "New email address", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			email := stringArg(args, "new_email")
			if email == "" {
				return fail("new_email is required"), nil
			}
			updated, err := deps.store.UpdateEmail(ctx, stringArg(args, "customer_id"), email)
			if err != nil {
				return nil, err
			}
			if !updated {
				return fail("customer not found"), nil
			}
			return okMsg("email updated", map[string]any{"email": email}), nil
		},
	)
}

func manageAddresses(deps *catalogDeps) contract.Tool {
	t := newTool(
		"manage_addresses",
		"List, add, update, or delete the customer's saved addresses.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"action":      {Type: schema.String, Desc: "One of list, add, update, delete", Required: true},
			"address":     {Type: schema.Object, Desc: "Address record for add/update"},
			"address_id":  {Type: schema.String, Desc: "Address id for update/delete"},
		},
		nil,
	)
	t.run = func(ctx context.Context, args map[string]any) (any, error) {
		customerID := stringArg(args, "customer_id")
		switch stringArg(args, "action") {
		case "list", "":
			addresses, err := deps.store.ListAddresses(ctx, customerID)
			if err != nil {
				return nil, err
			}
			return ok(addresses), nil
		case "add":
			address, valid := args["address"].(store.Address)
			if !valid || address.Line1 == "" {
				return fail("a valid address record is required"), nil
			}
			address.CustomerID = customerID
			if address.ID == "" {
				address.ID = "addr-" + deps.newID()
			}
			if err := deps.store.AddAddress(ctx, &address); err != nil {
				return nil, err
			}
			return okMsg("address added", address), nil
		case "update":
			address, valid := args["address"].(store.Address)
			if !valid {
				return fail("a valid address record is required"), nil
			}
			if id := stringArg(args, "address_id"); id != "" {
				address.ID = id
			}
			address.CustomerID = customerID
			updated, err := deps.store.UpdateAddress(ctx, &address)
			if err != nil {
				return nil, err
			}
			if !updated {
				return fail("address %s not found", address.ID), nil
			}
			return okMsg("address updated", address), nil
		case "delete":
			id := stringArg(args, "address_id")
			deleted, err := deps.store.DeleteAddress(ctx, customerID, id)
			if err != nil {
				return nil, err
			}
			if !deleted {
				return fail("address %s not found", id), nil
			}
			return okMsg("address deleted", nil), nil
		default:
			return fail("unknown action %q", stringArg(args, "action")), nil
		}
	}
	return t.withRecords(map[string]reflect.Type{
		"address": reflect.TypeOf(store.Address{}),
	})
}

func getLoyaltyBalance(deps *catalogDeps) contract.Tool {
	return newTool(
		"get_loyalty_balance",
		"Look up the customer's loyalty points, tier, and earned rewards.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			customer, err := deps.store.GetCustomer(ctx, stringArg(args, "customer_id"))
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fail("customer not found"), nil
				}
				return nil, err
			}
			return ok(customer.Loyalty), nil
		},
	)
}

func deleteAccount(deps *catalogDeps) contract.Tool {
	return newTool(
		"delete_account",
		"Permanently close the customer's account. The account is retained in a deactivated state for the legally required period.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"confirm":     {Type: schema.Boolean, Desc: "Must be true to proceed", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			if !boolArg(args, "confirm", false) {
				return fail("deletion requires explicit confirmation"), nil
			}
			deleted, err := deps.store.SoftDeleteCustomer(ctx, stringArg(args, "customer_id"))
			if err != nil {
				return nil, err
			}
			if !deleted {
				return fail("customer not found"), nil
			}
			return okMsg("account closed", nil), nil
		},
	)
}

func unlockAccount(deps *catalogDeps) contract.Tool {
	return newTool(
		"unlock_account",
		"Unlock an account that was locked after failed sign-in attempts.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			unlocked, err := deps.store.UnlockCustomer(ctx, stringArg(args, "customer_id"))
			if err != nil {
				return nil, err
			}
			if !unlocked {
				return fail("customer not found"), nil
			}
			return okMsg("account unlocked", nil), nil
		},
	)
}

// verifyIdentity checks the supplied answers against the customer record.
// It is deliberately lenient: any non-empty answer set passes when the
// account number matches.
func verifyIdentity(deps *catalogDeps) contract.Tool {
	return newTool(
		"verify_identity",
		"Verify the customer's identity with their account number before sensitive operations.",
		map[string]*schema.ParameterInfo{
			"customer_id":    {Type: schema.String, Desc: "Customer id", Required: true},
			"account_number": {Type: schema.String, Desc: "Account number the customer provided", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			customer, err := deps.store.GetCustomer(ctx, stringArg(args, "customer_id"))
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fail("customer not found"), nil
				}
				return nil, err
			}
			provided := stringArg(args, "account_number")
			if !equalsFold(provided, customer.Profile.AccountNumber) {
				return fail("identity verification failed"), nil
			}
			return okMsg("identity verified", nil), nil
		},
	)
}

func manageEmailSubscriptions(deps *catalogDeps) contract.Tool {
	t := newTool(
		"manage_email_subscriptions",
		"Update which marketing emails and newsletters the customer receives.",
		map[string]*schema.ParameterInfo{
			"customer_id":   {Type: schema.String, Desc: "Customer id", Required: true},
			"subscriptions": {Type: schema.Object, Desc: "Desired subscription settings", Required: true},
		},
		nil,
	)
	t.run = func(ctx context.Context, args map[string]any) (any, error) {
		prefs, valid := args["subscriptions"].(store.SubscriptionPreferences)
		if !valid {
			return fail("a valid subscriptions record is required"), nil
		}
		updated, err := deps.store.UpdateSubscriptions(ctx, stringArg(args, "customer_id"), prefs)
		if err != nil {
			return nil, err
		}
		if !updated {
			return fail("customer not found"), nil
		}
		return okMsg("subscriptions updated", prefs), nil
	}
	return t.withRecords(map[string]reflect.Type{
		"subscriptions": reflect.TypeOf(store.SubscriptionPreferences{}),
	})
}

func updateCommunicationPreferences(deps *catalogDeps) contract.Tool {
	t := newTool(
		"update_communication_preferences",
		"Update the channels (email, SMS, push) the customer wants to be contacted on.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"preferences": {Type: schema.Object, Desc: "Desired channel settings", Required: true},
		},
		nil,
	)
	t.run = func(ctx context.Context, args map[string]any) (any, error) {
		prefs, valid := args["preferences"].(store.CommunicationPreferences)
		if !valid {
			return fail("a valid preferences record is required"), nil
		}
		updated, err := deps.store.UpdateCommunicationPreferences(ctx, stringArg(args, "customer_id"), prefs)
		if err != nil {
			return nil, err
		}
		if !updated {
			return fail("customer not found"), nil
		}
		return okMsg("communication preferences updated", prefs), nil
	}
	return t.withRecords(map[string]reflect.Type{
		"preferences": reflect.TypeOf(store.CommunicationPreferences{}),
	})
}
