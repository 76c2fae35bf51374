// Package media adapts the mediasoup routing engine to the narrow
// capability interfaces the core consumes.
package media

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BradMoyetones/chat-backend-go/internal/config"
	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/jiyeyuran/mediasoup-go"
	"github.com/rs/zerolog/log"
)

// Engine is one mediasoup worker with one router, shared by every room.
type Engine struct {
	worker *mediasoup.Worker
	router *mediasoup.Router
	cfg    config.WebRTCConfig
	caps   json.RawMessage
}

func mediaCodecs() []*mediasoup.RtpCodecCapability {
	return []*mediasoup.RtpCodecCapability{
		{
			Kind:      mediasoup.MediaKind_Audio,
			MimeType:  "audio/opus",
			ClockRate: 48000,
			Channels:  2,
		},
		{
			Kind:      mediasoup.MediaKind_Video,
			MimeType:  "video/VP8",
			ClockRate: 90000,
		},
	}
}

func NewEngine(cfg config.WebRTCConfig) (*Engine, error) {
	worker, err := mediasoup.NewWorker(
		mediasoup.WithLogLevel("warn"),
		mediasoup.WithRtcMinPort(cfg.RtcMinPort),
		mediasoup.WithRtcMaxPort(cfg.RtcMaxPort),
	)
	if err != nil {
		return nil, fmt.Errorf("create mediasoup worker: %w", err)
	}
	router, err := worker.CreateRouter(mediasoup.RouterOptions{MediaCodecs: mediaCodecs()})
	if err != nil {
		worker.Close()
		return nil, fmt.Errorf("create router: %w", err)
	}
	caps, err := json.Marshal(router.RtpCapabilities())
	if err != nil {
		worker.Close()
		return nil, fmt.Errorf("marshal router capabilities: %w", err)
	}
	log.Info().Str("module", "media").Uint16("rtc_min", cfg.RtcMinPort).Uint16("rtc_max", cfg.RtcMaxPort).Msg("mediasoup worker and router created")
	return &Engine{worker: worker, router: router, cfg: cfg, caps: caps}, nil
}

func (e *Engine) Capabilities() json.RawMessage { return e.caps }

func (e *Engine) CanConsume(producerID string, rtpCapabilities json.RawMessage) bool {
	var caps mediasoup.RtpCapabilities
	if err := json.Unmarshal(rtpCapabilities, &caps); err != nil {
		return false
	}
	return e.router.CanConsume(producerID, caps)
}

func (e *Engine) CreateTransport(_ context.Context) (core.MediaTransport, error) {
	enableUdp := true
	t, err := e.router.CreateWebRtcTransport(mediasoup.WebRtcTransportOptions{
		ListenIps: []mediasoup.TransportListenIp{
			{Ip: e.cfg.ListenIP, AnnouncedIp: e.cfg.AnnouncedIP},
		},
		EnableUdp: &enableUdp,
		EnableTcp: true,
		PreferUdp: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create webrtc transport: %w", err)
	}
	return &transport{inner: t}, nil
}

func (e *Engine) Close() {
	e.worker.Close()
}

type transport struct {
	inner *mediasoup.WebRtcTransport
}

func (t *transport) ID() string { return t.inner.Id() }

func (t *transport) Params() core.TransportParams {
	ice, _ := json.Marshal(t.inner.IceParameters())
	candidates, _ := json.Marshal(t.inner.IceCandidates())
	dtls, _ := json.Marshal(t.inner.DtlsParameters())
	return core.TransportParams{
		ID:             t.inner.Id(),
		IceParameters:  ice,
		IceCandidates:  candidates,
		DtlsParameters: dtls,
	}
}

func (t *transport) Connect(_ context.Context, dtlsParameters json.RawMessage) error {
	var dtls mediasoup.DtlsParameters
	if err := json.Unmarshal(dtlsParameters, &dtls); err != nil {
		return fmt.Errorf("parse dtls parameters: %w", err)
	}
	return t.inner.Connect(mediasoup.TransportConnectOptions{DtlsParameters: &dtls})
}

func (t *transport) Produce(_ context.Context, kind core.MediaKind, rtpParameters json.RawMessage) (core.MediaProducer, error) {
	var rtp mediasoup.RtpParameters
	if err := json.Unmarshal(rtpParameters, &rtp); err != nil {
		return nil, fmt.Errorf("parse rtp parameters: %w", err)
	}
	p, err := t.inner.Produce(mediasoup.ProducerOptions{
		Kind:          mediasoup.MediaKind(kind),
		RtpParameters: rtp,
	})
	if err != nil {
		return nil, err
	}
	return &producer{inner: p}, nil
}

func (t *transport) Consume(_ context.Context, producerID string, rtpCapabilities json.RawMessage) (core.MediaConsumer, error) {
	var caps mediasoup.RtpCapabilities
	if err := json.Unmarshal(rtpCapabilities, &caps); err != nil {
		return nil, fmt.Errorf("parse rtp capabilities: %w", err)
	}
	c, err := t.inner.Consume(mediasoup.ConsumerOptions{
		ProducerId:      producerID,
		RtpCapabilities: caps,
		Paused:          false,
	})
	if err != nil {
		return nil, err
	}
	return &consumer{inner: c}, nil
}

func (t *transport) Close() { t.inner.Close() }

type producer struct {
	inner *mediasoup.Producer
}

func (p *producer) ID() string           { return p.inner.Id() }
func (p *producer) Kind() core.MediaKind { return core.MediaKind(p.inner.Kind()) }
func (p *producer) Close()               { p.inner.Close() }

type consumer struct {
	inner *mediasoup.Consumer
}

func (c *consumer) ID() string           { return c.inner.Id() }
func (c *consumer) ProducerID() string   { return c.inner.ProducerId() }
func (c *consumer) Kind() core.MediaKind { return core.MediaKind(c.inner.Kind()) }
func (c *consumer) Close()               { c.inner.Close() }

func (c *consumer) RtpParameters() json.RawMessage {
	rtp, _ := json.Marshal(c.inner.RtpParameters())
	return rtp
}
