package web

import (
	"context"

	"github.com/brutella/dnssd"
	"github.com/charmbracelet/log"
)

const serviceType = "_http._tcp"

// Announce publishes the HTTP endpoint via DNS-SD so the gateway can be found
// without knowing its address. Failures are logged and otherwise ignored;
// discovery is a convenience, not a requirement.
func Announce(name string, port int, logger *log.Logger) {
	sv, err := dnssd.NewService(dnssd.Config{
		Name: name,
		Type: serviceType,
		Port: port,
	})
	if err != nil {
		logger.Warn("dns-sd service setup failed", "err", err)
		return
	}
	rp, err := dnssd.NewResponder()
	if err != nil {
		logger.Warn("dns-sd responder setup failed", "err", err)
		return
	}
	if _, err := rp.Add(sv); err != nil {
		logger.Warn("dns-sd announce failed", "err", err)
		return
	}
	logger.Info("dns-sd announcing", "name", name, "type", serviceType, "port", port)
	go func() {
		if err := rp.Respond(context.Background()); err != nil {
			logger.Warn("dns-sd responder stopped", "err", err)
		}
	}()
}
