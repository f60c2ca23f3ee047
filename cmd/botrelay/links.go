package main

import (
	"log/slog"

	"github.com/rickgao/botrelay/internal/codec"
	"github.com/rickgao/botrelay/internal/config"
	"github.com/rickgao/botrelay/internal/connection"
	"github.com/rickgao/botrelay/internal/relay"
	"github.com/rickgao/botrelay/internal/router"
	"github.com/rickgao/botrelay/internal/transport"
)

// linkConfigs splits a configured link into its relay, socket and
// reconnection settings.
func linkConfigs(lc config.LinkConfig) (relay.LinkConfig, connection.ClientConfig, relay.SupervisorConfig) {
	linkCfg := relay.LinkConfig{
		Name:       lc.Name,
		Label:      lc.Label,
		Dimension:  lc.Dimension,
		Codec:      lc.Codec,
		Room:       lc.Room,
		ChunkSize:  lc.ChunkSize,
		ChunkTTL:   lc.ChunkTTL,
		QueueSize:  lc.QueueSize,
		QueueLimit: lc.QueueLimit,
		StageOrder: lc.Stages,
	}
	if lc.Encryption.Enabled {
		linkCfg.Encryption = &transport.FernetConfig{
			Password:   lc.Encryption.Password,
			Salt:       lc.Encryption.Salt,
			Iterations: lc.Encryption.Iterations,
			Hash:       lc.Encryption.Hash,
			Length:     lc.Encryption.Length,
			TTL:        lc.Encryption.TTL,
		}
	}

	clientCfg := connection.DefaultClientConfig()
	clientCfg.URL = lc.URL
	clientCfg.Token = lc.Token
	clientCfg.Room = lc.Room
	clientCfg.PingInterval = lc.PingInterval
	clientCfg.PingTimeout = lc.PingTimeout
	clientCfg.WriteTimeout = lc.WriteTimeout

	supCfg := relay.SupervisorConfig{
		ReconnectBaseWait: lc.ReconnectBaseDelay,
		ReconnectMaxWait:  lc.ReconnectMaxDelay,
	}
	return linkCfg, clientCfg, supCfg
}

// newSupervisors builds one supervised websocket link per configured link.
func newSupervisors(links []config.LinkConfig, styles *codec.Styles, hub router.Hub, logger *slog.Logger) ([]*relay.Supervisor, error) {
	sups := make([]*relay.Supervisor, 0, len(links))
	for _, lc := range links {
		linkCfg, clientCfg, supCfg := linkConfigs(lc)
		link, err := relay.NewLink(linkCfg, styles, hub, logger)
		if err != nil {
			return nil, err
		}
		dial := relay.WebSocketDialer(clientCfg, logger)
		sups = append(sups, relay.NewSupervisor(supCfg, link, hub, dial, logger))
	}
	return sups, nil
}
