// Package harness runs ledger scenarios: scripted sequences of adds, clock
// advances and unloads followed by assertions on the resulting board and
// export.
//
// Scenarios are YAML files. Each one runs against a fresh in-memory ledger
// with a fake clock starting at a fixed instant and sequential record IDs
// (cyl-0001, cyl-0002, ...), so traces and snapshots are reproducible.
//
// A minimal scenario:
//
//	name: overdue
//	description: A cylinder left past its estimate is flagged overdue
//	flow:
//	  - add: {order_number: O1, current_id: C1, needed_id: C2,
//	          oven_number: Oven 1, estimated_duration: 30,
//	          operator: Alice, material: Steel, thickness: 2}
//	  - advance: 31m
//	assertions:
//	  - type: in_oven
//	    in_oven: [{id: cyl-0001, elapsed: 31, overdue: true}]
//
// Use RunWithGolden in tests to compare the full snapshot of a run against
// testdata/golden.
package harness
