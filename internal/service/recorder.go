package service

// Recorder receives business events for metrics.
// Implemented by metrics.Metrics.
type Recorder interface {
	ObserveSale(total float64, units int)
	ObserveSaleFailure()
	ObserveAuth(role string, ok bool)
	ObserveCatalogMutation(op string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSale(float64, int)      {}
func (nopRecorder) ObserveSaleFailure()           {}
func (nopRecorder) ObserveAuth(string, bool)      {}
func (nopRecorder) ObserveCatalogMutation(string) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
