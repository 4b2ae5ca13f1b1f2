// Package config provides scenario and job management for the encounter server.
//
// The config package handles:
//   - Loading scenario definitions from JSON or YAML files
//   - Validation through the scenario package
//   - Default scenario selection
//   - Scenario and job discovery and listing
//
// Scenario Sources:
//
// A Manager reads from an optional scenario directory and from the scenarios
// embedded in the binary. Files in the directory shadow embedded scenarios with
// the same id. Job files live in a jobs/ subdirectory and bundle several
// scenarios, addressed as "job/scenario".
//
// Embedded Scenarios:
//   - warehouse: obstacle course with crates to push aside
//   - ambush: combat against two raiders, auto AI on
//   - gauntlet: timed obstacle with a guard and a survival condition
//   - courier/loading-dock, courier/back-alley: the courier job
//
// Usage:
//
//	manager, err := config.NewManager("scenarios")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load a specific scenario
//	def, err := manager.LoadScenario("ambush")
//
//	// Get the default scenario
//	def = manager.GetDefault()
//
//	// List available scenarios
//	infos, err := manager.ListScenarios()
package config
