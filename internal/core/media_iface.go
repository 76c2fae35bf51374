package core

import (
	"context"
	"encoding/json"
)

// MediaKind is the media type of a producer or consumer.
type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// TransportParams is everything a client needs to negotiate one
// transport. The nested blobs are engine-issued and opaque here.
type TransportParams struct {
	ID             string          `json:"id"`
	IceParameters  json.RawMessage `json:"iceParameters"`
	IceCandidates  json.RawMessage `json:"iceCandidates"`
	DtlsParameters json.RawMessage `json:"dtlsParameters"`
}

// ConsumerParams is the negotiation answer for one consumer.
type ConsumerParams struct {
	ID            string          `json:"id"`
	ProducerID    string          `json:"producerId"`
	Kind          MediaKind       `json:"kind"`
	RtpParameters json.RawMessage `json:"rtpParameters"`
}

// MediaRouter is the shared media routing engine, a capability provider
// constructed at process start and passed by reference.
type MediaRouter interface {
	Capabilities() json.RawMessage
	CreateTransport(ctx context.Context) (MediaTransport, error)
	CanConsume(producerID string, rtpCapabilities json.RawMessage) bool
}

// MediaTransport is one negotiated network path owned by a peer.
type MediaTransport interface {
	ID() string
	Params() TransportParams
	Connect(ctx context.Context, dtlsParameters json.RawMessage) error
	Produce(ctx context.Context, kind MediaKind, rtpParameters json.RawMessage) (MediaProducer, error)
	Consume(ctx context.Context, producerID string, rtpCapabilities json.RawMessage) (MediaConsumer, error)
	Close()
}

type MediaProducer interface {
	ID() string
	Kind() MediaKind
	Close()
}

type MediaConsumer interface {
	ID() string
	ProducerID() string
	Kind() MediaKind
	RtpParameters() json.RawMessage
	Close()
}
