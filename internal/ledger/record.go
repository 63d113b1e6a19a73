package ledger

import "time"

// DefaultOvens is the oven set used when no configuration overrides it.
var DefaultOvens = []string{"Oven 1", "Oven 2", "Oven 3"}

// Columns is the tabular column set shared by the ledger store and the export.
var Columns = []string{
	"OrderNumber",
	"CurrentID",
	"NeededID",
	"OvenNumber",
	"EstimatedDuration",
	"Operator",
	"Material",
	"Thickness",
	"LoadTime",
	"UnloadTime",
}

// Record is one cylinder loaded into an oven.
type Record struct {
	ID                string     `json:"id"`
	OrderNumber       string     `json:"order_number"`
	CurrentID         string     `json:"current_id"`
	NeededID          string     `json:"needed_id"`
	OvenNumber        string     `json:"oven_number"`
	EstimatedDuration int        `json:"estimated_duration"` // minutes
	Operator          string     `json:"operator"`
	Material          string     `json:"material"`
	Thickness         float64    `json:"thickness"` // mm
	LoadTime          time.Time  `json:"load_time"`
	UnloadTime        *time.Time `json:"unload_time,omitempty"`
}

// InOven reports whether the cylinder has not been unloaded yet.
func (r Record) InOven() bool {
	return r.UnloadTime == nil
}

// clone returns a copy that shares no pointers with r.
func (r Record) clone() Record {
	if r.UnloadTime != nil {
		t := *r.UnloadTime
		r.UnloadTime = &t
	}
	return r
}

// NewCylinder carries the operator-entered fields for AddCylinder.
type NewCylinder struct {
	OrderNumber       string  `json:"order_number"`
	CurrentID         string  `json:"current_id"`
	NeededID          string  `json:"needed_id"`
	OvenNumber        string  `json:"oven_number"`
	EstimatedDuration int     `json:"estimated_duration"`
	Operator          string  `json:"operator"`
	Material          string  `json:"material"`
	Thickness         float64 `json:"thickness"`
}

// OvenCount is one row of the in-oven summary.
type OvenCount struct {
	OvenNumber string `json:"oven_number"`
	Count      int    `json:"count"`
}

// InOvenItem decorates an in-oven record with values derived from now.
type InOvenItem struct {
	Record         Record `json:"record"`
	ElapsedMinutes int    `json:"elapsed_minutes"`
	Overdue        bool   `json:"overdue"`
}

// elapsedMinutes floors (now - load) to whole minutes, never below zero.
func elapsedMinutes(now, load time.Time) int {
	d := now.Sub(load)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
