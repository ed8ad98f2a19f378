// Eleu is a governance engine for multi-party policy workflows.
//
// Policies are written as rule documents in a small one-line-per-rule
// language. Executing a rule instantiates a coordination forum, a service
// activation, or a child policy, with capability-based permission checks
// and an append-only audit trail behind every transition.
//
// Usage:
//
//	# Start the engine with default configuration
//	eleu run
//
//	# Start with a custom configuration file
//	eleu run --config /etc/eleu/config.yaml
//
//	# Validate rule documents
//	eleu lint --file housing.rules
//	eleu lint --dir policies/
//
//	# Execute one rule directly
//	eleu exec --policy pol-1234 --rule intake --actor u-1
//
//	# Query the audit trail
//	eleu events --type forum_created --actor u-1
package main

func main() {
	Execute()
}
