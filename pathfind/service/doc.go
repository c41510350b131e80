// Package service provides the application layer between the transports and
// the A* engine.
//
// The service package implements:
//   - One-shot solving of ad-hoc or named scenarios
//   - Scenario lookup and storage through a ScenarioStore
//   - Recording of recent runs through a RunStore
//
// Core Interfaces:
//
// PathService is the main interface used by the REST API, the CLI and the MCP
// tools. RunStore keeps finished runs in memory. ScenarioStore loads and saves
// named scenarios.
//
// Architecture:
//
// Every solve builds a private grid, searches it once and converts the outcome
// into a SolveResult. No grid outlives the call, so concurrent requests never
// share search state. An unreachable destination is reported as a result with
// status "no_path"; invalid input and oversized grids are errors.
//
// Usage:
//
//	runMgr := runs.NewManager(100)
//	scenarioMgr, _ := scenario.NewManager("scenarios")
//	svc := service.NewPathService(runMgr, scenarioMgr)
//
//	result, err := svc.SolveScenario(ctx, "maze")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.PathLength)
package service
