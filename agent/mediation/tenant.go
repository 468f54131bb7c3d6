package mediation

import (
	"encoding/json"
	"fmt"

	"github.com/alltimesound/customer-service-agent/agent/contract"
	sessionx "github.com/alltimesound/customer-service-agent/agent/session"
	"github.com/alltimesound/customer-service-agent/agent/store"
)

// checkTenant refuses any tool call whose customer_id argument names a
// customer other than the one bound to the session. Tools that take no
// customer_id are exempt.
func checkTenant(call *contract.ToolCall, sess *sessionx.State) string {
	raw, ok := call.Args["customer_id"]
	if !ok {
		return ""
	}

	if sess == nil || !sess.HasProfile() {
		return "No customer profile selected. Please select a profile."
	}

	var record store.CustomerRecord
	if err := json.Unmarshal([]byte(sess.CustomerProfile), &record); err != nil || record.ID == "" {
		return "Customer profile couldn't be parsed. Please reload the customer data."
	}

	requested := fmt.Sprint(raw)
	if requested != record.ID {
		return fmt.Sprintf("You cannot use the tool with customer_id %s, only for %s.", requested, record.ID)
	}
	return ""
}
