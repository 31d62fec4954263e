package history

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	protofmt "github.com/oneee-playground/glue-deployer/internal/util/proto"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/structpb"
)

// Entry records the sizing decision of one deployment pass.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	JobName   string    `json:"jobName"`
	At        time.Time `json:"at"`
	SizeBytes int64     `json:"sizeBytes"`
	Decision  string    `json:"decision"`
	State     string    `json:"state"`
	Published string    `json:"published"`
	Archive   string    `json:"archive,omitempty"`
}

// Journal is an append-only file of entries.
type Journal struct {
	mu   sync.Mutex
	path string
}

func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

func (j *Journal) Append(ctx context.Context, e Entry) error {
	msg, err := e.toStruct()
	if err != nil {
		return errors.Wrap(err, "converting entry")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.path), 0744); err != nil {
		return errors.Wrap(err, "mkdir all")
	}

	file, err := os.OpenFile(j.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrap(err, "opening file")
	}
	defer file.Close()

	if err := protofmt.NewEncoder(file).Encode(msg); err != nil {
		return errors.Wrap(err, "writing entry")
	}

	return nil
}

// Entries reads every entry in the order it was appended.
func (j *Journal) Entries(ctx context.Context) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.Open(j.path)
	if err != nil {
		return nil, errors.Wrap(err, "opening journal")
	}
	defer file.Close()

	dec := protofmt.NewDecoder(bufio.NewReader(file))

	var entries []Entry
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		dst := new(structpb.Struct)

		err := dec.Decode(dst)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "decoding entry")
		}

		entry, err := entryFromStruct(dst)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func (e Entry) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"id":        e.ID.String(),
		"job":       e.JobName,
		"at":        e.At.UTC().Format(time.RFC3339),
		"sizeBytes": e.SizeBytes,
		"decision":  e.Decision,
		"state":     e.State,
		"published": e.Published,
		"archive":   e.Archive,
	})
}

func entryFromStruct(s *structpb.Struct) (Entry, error) {
	fields := s.GetFields()

	id, err := uuid.Parse(fields["id"].GetStringValue())
	if err != nil {
		return Entry{}, errors.Wrap(err, "parsing entry id")
	}

	at, err := time.Parse(time.RFC3339, fields["at"].GetStringValue())
	if err != nil {
		return Entry{}, errors.Wrap(err, "parsing entry time")
	}

	return Entry{
		ID:        id,
		JobName:   fields["job"].GetStringValue(),
		At:        at,
		SizeBytes: int64(fields["sizeBytes"].GetNumberValue()),
		Decision:  fields["decision"].GetStringValue(),
		State:     fields["state"].GetStringValue(),
		Published: fields["published"].GetStringValue(),
		Archive:   fields["archive"].GetStringValue(),
	}, nil
}
