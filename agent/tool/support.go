package tool

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/alltimesound/customer-service-agent/agent/contract"
)

func supportTools(deps *catalogDeps) []contract.Tool {
	return []contract.Tool{
		createSupportTicket(deps),
		getTicketStatus(deps),
		updateTicket(deps),
		closeTicket(deps),
		getTroubleshootingSteps(deps),
		checkSystemStatus(deps),
		reportBug(deps),
		requestFeature(deps),
		requestCallback(deps),
	}
}

func createSupportTicket(deps *catalogDeps) contract.Tool {
	return newTool(
		"create_support_ticket",
		"Open a support ticket for an issue that needs human follow-up.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"subject":     {Type: schema.String, Desc: "Short summary", Required: true},
			"description": {Type: schema.String, Desc: "Details of the issue", Required: true},
			"priority":    {Type: schema.String, Desc: "One of low, normal, high"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			subject := stringArg(args, "subject")
			if subject == "" {
				return fail("a subject is required"), nil
			}
			priority := stringArg(args, "priority")
			if priority == "" {
				priority = "normal"
			}
			return okMsg("ticket created", map[string]any{
				"ticket_id":  "tkt-" + deps.newID(),
				"subject":    subject,
				"priority":   priority,
				"status":     "open",
				"created_at": deps.now().UTC().Format(time.RFC3339),
			}), nil
		},
	)
}

func getTicketStatus(deps *catalogDeps) contract.Tool {
	return newTool(
		"get_ticket_status",
		"Look up the current status of a support ticket.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"ticket_id":   {Type: schema.String, Desc: "Ticket id", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			ticketID := stringArg(args, "ticket_id")
			if ticketID == "" {
				return fail("a ticket id is required"), nil
			}
			return ok(map[string]any{
				"ticket_id":     ticketID,
				"status":        "in_progress",
				"assigned_team": "support tier 1",
				"last_update":   deps.now().UTC().Format(time.RFC3339),
			}), nil
		},
	)
}

func updateTicket(deps *catalogDeps) contract.Tool {
	return newTool(
		"update_ticket",
		"Append information from the customer to an existing ticket.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"ticket_id":   {Type: schema.String, Desc: "Ticket id", Required: true},
			"note":        {Type: schema.String, Desc: "Information to append", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			if stringArg(args, "note") == "" {
				return fail("a note is required"), nil
			}
			return okMsg("ticket updated", map[string]any{
				"ticket_id":  stringArg(args, "ticket_id"),
				"updated_at": deps.now().UTC().Format(time.RFC3339),
			}), nil
		},
	)
}

func closeTicket(deps *catalogDeps) contract.Tool {
	return newTool(
		"close_ticket",
		"Close a resolved support ticket.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"ticket_id":   {Type: schema.String, Desc: "Ticket id", Required: true},
			"resolution":  {Type: schema.String, Desc: "How the issue was resolved"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			return okMsg("ticket closed", map[string]any{
				"ticket_id":  stringArg(args, "ticket_id"),
				"resolution": stringArg(args, "resolution"),
				"closed_at":  deps.now().UTC().Format(time.RFC3339),
			}), nil
		},
	)
}

// troubleshootingGuides maps a topic keyword to canned steps. Matching is
// substring-based over the lowercased topic.
var troubleshootingGuides = map[string][]string{
	"skipping": {
		"Clean the record with an anti-static brush before each play.",
		"Check the stylus for dust and wear; replace if older than 1000 hours.",
		"Verify the tonearm tracking force against the cartridge spec.",
	},
	"turntable": {
		"Confirm the belt is seated on the motor pulley.",
		"Check the platter spins freely by hand with the belt removed.",
		"Verify the speed selector matches the record (33/45 RPM).",
	},
	"cd": {
		"Inspect the disc for scratches; clean radially with a soft cloth.",
		"Try the disc in another player to isolate the fault.",
		"Power-cycle the player and retry.",
	},
	"account": {
		"Clear the browser cache and retry signing in.",
		"Use the password reset flow if the password is rejected.",
		"Check whether the account email has a pending verification.",
	},
}

func getTroubleshootingSteps(deps *catalogDeps) contract.Tool {
	return newTool(
		"get_troubleshooting_steps",
		"Get step-by-step troubleshooting for a playback or equipment problem.",
		map[string]*schema.ParameterInfo{
			"topic": {Type: schema.String, Desc: "What the customer is troubleshooting", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			topic := strings.ToLower(stringArg(args, "topic"))
			for keyword, steps := range troubleshootingGuides {
				if strings.Contains(topic, keyword) {
					return ok(map[string]any{"topic": keyword, "steps": steps}), nil
				}
			}
			return fail("no troubleshooting guide matches %q; consider opening a support ticket", topic), nil
		},
	)
}

func checkSystemStatus(deps *catalogDeps) contract.Tool {
	return newTool(
		"check_system_status",
		"Report the operational status of the store's customer-facing systems.",
		map[string]*schema.ParameterInfo{},
		func(ctx context.Context, args map[string]any) (any, error) {
			return ok(map[string]any{
				"storefront":    "operational",
				"checkout":      "operational",
				"order_lookup":  "operational",
				"notifications": "degraded",
				"checked_at":    deps.now().UTC().Format(time.RFC3339),
			}), nil
		},
	)
}

func reportBug(deps *catalogDeps) contract.Tool {
	return newTool(
		"report_bug",
		"File a bug report about the website or apps on the customer's behalf.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"summary":     {Type: schema.String, Desc: "What is broken", Required: true},
			"steps":       {Type: schema.String, Desc: "Steps to reproduce"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			if stringArg(args, "summary") == "" {
				return fail("a summary is required"), nil
			}
			return okMsg("bug report filed", map[string]any{
				"bug_id":   "bug-" + deps.newID(),
				"summary":  stringArg(args, "summary"),
				"filed_at": deps.now().UTC().Format(time.RFC3339),
			}), nil
		},
	)
}

func requestFeature(deps *catalogDeps) contract.Tool {
	return newTool(
		"request_feature",
		"Record a feature request from the customer.",
		map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer id", Required: true},
			"description": {Type: schema.String, Desc: "The requested feature", Required: true},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			if stringArg(args, "description") == "" {
				return fail("a description is required"), nil
			}
			return okMsg("feature request recorded", map[string]any{
				"request_id": "fr-" + deps.newID(),
			}), nil
		},
	)
}

func requestCallback(deps *catalogDeps) contract.Tool {
	return newTool(
		"request_callback",
		"Schedule a phone callback from a human support agent.",
		map[string]*schema.ParameterInfo{
			"customer_id":    {Type: schema.String, Desc: "Customer id", Required: true},
			"phone":          {Type: schema.String, Desc: "Phone number to call", Required: true},
			"preferred_time": {Type: schema.String, Desc: "Preferred time window"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			phone := stringArg(args, "phone")
			if phone == "" {
				return fail("a phone number is required"), nil
			}
			window := stringArg(args, "preferred_time")
			if window == "" {
				window = "next business day"
			}
			return okMsg("callback scheduled", map[string]any{
				"callback_id": "cb-" + deps.newID(),
				"phone":       phone,
				"window":      window,
			}), nil
		},
	)
}
