// README: Simulated train, recomputed every tick and never stored.
package trains

type Train struct {
	ID        string  `json:"id"`
	Lat       float64 `json:"lat"`
	Long      float64 `json:"long"`
	LineID    string  `json:"line_id"`
	LineName  string  `json:"line_name"`
	Direction string  `json:"direction"`
}
