package prometheus

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/squareup/tdcodec/errors"
	"github.com/squareup/tdcodec/metrics"
)

// Factory registers counters with a caller supplied registerer. Exposing the registry is the caller's concern.
type Factory struct {
	registerer prometheus.Registerer
	namespace  string
	lock       sync.Mutex
}

func NewFactory(registerer prometheus.Registerer, namespace string) metrics.Factory {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &Factory{registerer: registerer, namespace: namespace}
}

func (f *Factory) CreateCounter(name string, description string) (metrics.Counter, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: f.namespace,
		Name:      name,
		Help:      description,
	})
	if err := f.registerer.Register(counter); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, errors.WithStack(err)
		}
		existing, ok := are.ExistingCollector.(prometheus.Counter)
		if !ok {
			return nil, errors.Errorf("collector %s is already registered and is not a counter", name)
		}
		log.Debugf("reusing registered counter %s", name)
		counter = existing
	}
	return &Counter{pCounter: counter}, nil
}

type Counter struct {
	pCounter prometheus.Counter
}

func (c *Counter) Inc() {
	c.pCounter.Inc()
}

func (c *Counter) Add(delta float64) {
	c.pCounter.Add(delta)
}
