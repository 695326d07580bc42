// Package mazerunner drives a sonar-guided vehicle through a known maze.
//
// The maze is a graph of intersections joined by corridors, each labeled
// with the heading that traverses it. A route is planned offline and then
// driven move by move. The vehicle has no odometry, so every move ends on
// the first qualifying sensor event: a wall ahead, a side opening, or a turn
// threshold crossing.
//
// # Installation
//
//	go install github.com/gwillem/mazerunner/cmd/mazerunner@latest
//
// # Usage
//
// Assign the GPIO pins once:
//
//	mazerunner setup
//
// Inspect the planned route, try it on the simulator, then drive it:
//
//	mazerunner plan maze.json
//	mazerunner sim --tui maze.json
//	mazerunner run --tui maze.json
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/mazerunner: CLI with plan, run, sim and setup commands
//   - pkg/maze: Maze graph, headings, commands and the JSON map format
//   - pkg/plan: Route planner
//   - pkg/robot: Motor and sonar hardware, wiring config and calibration
//   - pkg/motion: Motion engine racing sensors to finish each move
//   - pkg/sim: Simulated vehicle
//   - pkg/metrics: Prometheus instrumentation
package mazerunner
