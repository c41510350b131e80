// Package scenario provides named scenario storage for the A* pathfinder.
//
// The scenario package handles:
//   - Loading scenarios from JSON and YAML files
//   - Caching parsed scenarios behind a read/write lock
//   - Writing new scenarios as indented JSON
//   - Evicting cached entries when files change on disk
//
// Scenario Format:
//
// A scenario file describes a grid size, a source, a destination and a list
// of blocked cells:
//
//	{
//	  "name": "wall",
//	  "rows": 3,
//	  "cols": 3,
//	  "source": {"x": 0, "y": 0},
//	  "destination": {"x": 2, "y": 2},
//	  "blocked": [{"x": 0, "y": 1}, {"x": 1, "y": 1}, {"x": 2, "y": 1}]
//	}
//
// The scenario ID is the file name without its extension.
//
// Usage:
//
//	manager, err := scenario.NewManager("scenarios")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	s, err := manager.LoadScenario("wall")
//	infos, err := manager.ListScenarios()
//
//	go manager.Watch(ctx)
package scenario
