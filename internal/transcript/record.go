package transcript

// Record is the lossless persisted form of a run's transcript. Rendering to
// JSON, Markdown, or anything else is an external concern; every field the
// exporters need is populated here.
type Record struct {
	RunID    string  `json:"runId"`
	Model    string  `json:"model"`
	Complete bool    `json:"complete"`
	Totals   Totals  `json:"totals"`
	Turns    []Turn  `json:"turns"`
	CostUSD  float64 `json:"costUsd,omitempty"`
}

// Record snapshots the transcript for persistence. Complete reflects whether
// the run finished normally; a failed run is marked incomplete rather than
// presenting partial output as final.
func (tr *Transcript) Record(complete bool) Record {
	rec := Record{
		RunID:    tr.RunID(),
		Model:    tr.Model(),
		Complete: complete,
		Totals:   tr.Totals(),
		Turns:    tr.Turns(),
	}
	if cost, err := tr.Cost(); err == nil {
		rec.CostUSD = cost
	}
	return rec
}
