package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/autograde/grader/internal/config"
	"github.com/autograde/grader/internal/queue"
)

var ErrNoAzure = errors.New("azure storage account is not configured")

func GetBatchQueueClient(cfg *config.Config) (*queue.AzureQueuer, error) {
	if cfg.Azure == nil {
		return nil, ErrNoAzure
	}

	sa := cfg.Azure.StorageAccount
	return queue.NewAzureQueuer(sa.Name, sa.Key, sa.Queues.URL, sa.Queues.Batches)
}

func GetResultQueueClient(cfg *config.Config) (*queue.AzureQueuer, error) {
	if cfg.Azure == nil {
		return nil, ErrNoAzure
	}

	sa := cfg.Azure.StorageAccount
	return queue.NewAzureQueuer(sa.Name, sa.Key, sa.Queues.URL, sa.Queues.Results)
}

// Decode a JSON document from path, "-" reads stdin
func ReadJSON(path string, out any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return nil
}

// Encode v as indented JSON to path, "" or "-" writes stdout
func WriteJSON(path string, v any) error {
	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
