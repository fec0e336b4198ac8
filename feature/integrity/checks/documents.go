package checks

import (
	"context"
	"fmt"

	"dat-manager/core/models"
	"dat-manager/core/storage"
	"dat-manager/feature/datjson"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/errgroup"
)

// DocumentResult describes one input document.
type DocumentResult struct {
	Key          string `json:"key"`
	Name         string `json:"name,omitempty"`
	Machines     int    `json:"machines"`
	Items        int    `json:"items"`
	UnknownItems int    `json:"unknown_items,omitempty"`
	Error        string `json:"error,omitempty"`
}

// DocumentReport is the result of a document check.
type DocumentReport struct {
	Prefix    string           `json:"prefix"`
	Valid     int              `json:"valid"`
	Invalid   int              `json:"invalid"`
	Documents []DocumentResult `json:"documents"`
}

// CheckDocuments decodes every object under prefix. Unreadable documents
// are reported, not returned as errors.
func CheckDocuments(ctx context.Context, client storage.Client, bucket, prefix string, workers int) (*DocumentReport, error) {
	keys, err := storage.ListKeys(ctx, client, bucket, prefix)
	if err != nil {
		return nil, err
	}

	results := make([]DocumentResult, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, key := range keys {
		g.Go(func() error {
			results[i] = checkDocument(gctx, client, bucket, key)
			return nil
		})
	}
	_ = g.Wait()

	report := &DocumentReport{Prefix: prefix, Documents: results}
	for _, r := range results {
		if r.Error != "" {
			report.Invalid++
		} else {
			report.Valid++
		}
	}
	return report, nil
}

func checkDocument(ctx context.Context, client storage.Client, bucket, key string) DocumentResult {
	res := DocumentResult{Key: key}

	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		res.Error = fmt.Sprintf("failed to get object: %v", err)
		return res
	}
	defer obj.Close()

	doc, err := datjson.Decode(obj)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Name = doc.Header.Name
	res.Machines = len(doc.Machines)
	for _, m := range doc.Machines {
		for _, it := range m.Items {
			if models.ParseItemType(it.Type) == models.TypeUnknown {
				res.UnknownItems++
				continue
			}
			res.Items++
		}
	}
	return res
}
