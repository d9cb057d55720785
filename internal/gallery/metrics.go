package gallery

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts the key-management operations the service layer cares
// about. IDs are never used as label values; the privacy log rules apply to
// metrics as well.
type Metrics struct {
	RotationsTotal  prometheus.Counter
	GrantsIssued    prometheus.Counter
	DecryptFailures prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RotationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aperture_gallery_rotations_total",
			Help: "Completed gallery key rotations.",
		}),
		GrantsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aperture_gallery_grants_issued_total",
			Help: "Member key grants written to the grant store.",
		}),
		DecryptFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aperture_gallery_decrypt_failures_total",
			Help: "Failed payload or grant decryptions observed by the service.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.RotationsTotal, m.GrantsIssued, m.DecryptFailures)
	}
	return m
}
