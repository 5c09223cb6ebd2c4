package statsd

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/alexcesaro/statsd.v2"
)

// Client is the process-wide statsd client. Handlers emit timings through it;
// it is muted until New is called with an address.
var Client *statsd.Client

// New configures the process statsd client. An empty address yields a muted
// client so callers never need to nil-check.
func New(address string, prefix string, interval time.Duration) error {
	var options []statsd.Option
	if address == "" {
		options = []statsd.Option{statsd.Mute(true)}
	} else {
		log.Infof("publishing statsd metrics to %s", address)
		options = []statsd.Option{
			statsd.Address(address),
			statsd.Prefix(prefix),
			statsd.FlushPeriod(interval),
		}
	}

	sd, err := statsd.New(options...)

	if err != nil {
		return fmt.Errorf("statsd.New: %v", err)
	}

	Client = sd
	return nil
}
