// Package jobs implements the background job queue: a closed set of job
// kinds, their wire envelope, the retry policy, a producer and a runner that
// dispatches deliveries to per-queue handlers.
package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Queue names, one per aggregate.
const (
	QueueBrand    = "brand"
	QueueCategory = "category"
	QueueProduct  = "product"
)

// Kind names a job type on the wire.
type Kind string

const (
	KindBrandDeleted    Kind = "brandDeleted"
	KindCategoryDeleted Kind = "categoryDeleted"
	KindProductCreated  Kind = "productCreated"
)

// ErrUnknownKind is returned when an envelope names a kind this package does
// not define.
var ErrUnknownKind = errors.New("unknown job kind")

// Job is one of BrandDeleted, CategoryDeleted or ProductCreated. The set is
// closed: the unexported method keeps other packages from adding kinds.
type Job interface {
	Kind() Kind
	Queue() string
	isJob()
}

// BrandDeleted asks for products referencing a deleted brand to be detached.
type BrandDeleted struct {
	BrandID string `json:"brandId"`
	Name    string `json:"name"`
}

func (BrandDeleted) Kind() Kind    { return KindBrandDeleted }
func (BrandDeleted) Queue() string { return QueueBrand }
func (BrandDeleted) isJob()        {}

// CategoryDeleted asks for a deleted category to be removed from products.
type CategoryDeleted struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
}

func (CategoryDeleted) Kind() Kind    { return KindCategoryDeleted }
func (CategoryDeleted) Queue() string { return QueueCategory }
func (CategoryDeleted) isJob()        {}

// ProductCreated announces a new product to every user.
type ProductCreated struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
}

func (ProductCreated) Kind() Kind    { return KindProductCreated }
func (ProductCreated) Queue() string { return QueueProduct }
func (ProductCreated) isJob()        {}

// Envelope is the message body carried by the broker.
type Envelope struct {
	ID         string          `json:"id"`
	Queue      string          `json:"queue"`
	Kind       Kind            `json:"kind"`
	Attempt    int             `json:"attempt"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// NewEnvelope wraps j in a fresh envelope with a new id.
func NewEnvelope(j Job) (Envelope, error) {
	payload, err := json.Marshal(j)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s payload: %w", j.Kind(), err)
	}
	return Envelope{
		ID:         uuid.NewString(),
		Queue:      j.Queue(),
		Kind:       j.Kind(),
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Job decodes the payload into its concrete job type.
func (e Envelope) Job() (Job, error) {
	var (
		j   Job
		err error
	)
	switch e.Kind {
	case KindBrandDeleted:
		var v BrandDeleted
		err = json.Unmarshal(e.Payload, &v)
		j = v
	case KindCategoryDeleted:
		var v CategoryDeleted
		err = json.Unmarshal(e.Payload, &v)
		j = v
	case KindProductCreated:
		var v ProductCreated
		err = json.Unmarshal(e.Payload, &v)
		j = v
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", e.Kind, err)
	}
	return j, nil
}

// Marshal encodes the envelope for the broker.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEnvelope decodes a broker message body.
func ParseEnvelope(body []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(body, &e); err != nil {
		return Envelope{}, fmt.Errorf("failed to decode job envelope: %w", err)
	}
	return e, nil
}
