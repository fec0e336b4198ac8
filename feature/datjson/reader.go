package datjson

import (
	"io"

	"dat-manager/core/hash"
	"dat-manager/core/models"
	"dat-manager/core/store"
	"dat-manager/core/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// LoadResult counts what a load added to the store.
type LoadResult struct {
	Machines int `json:"machines"`
	Items    int `json:"items"`
	Skipped  int `json:"skipped"`
}

// Decode parses a document without touching any store.
func Decode(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, Error.New("failed to decode document: %w", err)
	}
	return &doc, nil
}

// Read decodes a document from r and loads it into s under source.
func Read(r io.Reader, s *store.Store, source models.Source, log *zap.Logger) (*Header, LoadResult, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, LoadResult{}, err
	}
	return &doc.Header, Load(doc, s, source, log), nil
}

// Load adds every machine and item of doc to s. Items of unknown type are
// skipped.
func Load(doc *Document, s *store.Store, source models.Source, log *zap.Logger) LoadResult {
	if log == nil {
		log = zap.NewNop()
	}
	if source.Name == "" {
		source.Name = doc.Header.Name
	}
	src := s.AddSource(source)

	var res LoadResult
	for _, m := range doc.Machines {
		mid := s.AddMachine(models.Machine{
			Name:        m.Name,
			Description: m.Description,
			CloneOf:     m.CloneOf,
			RomOf:       m.RomOf,
			SampleOf:    m.SampleOf,
			Extra:       m.Extra,
		})
		res.Machines++

		for _, it := range m.Items {
			item, ok := toItem(it, log.With(zap.String("machine", m.Name)))
			if !ok {
				res.Skipped++
				continue
			}
			s.Add(item, mid, src)
			res.Items++
		}
	}

	log.Debug("document loaded",
		zap.String("source", source.Name),
		zap.Int("machines", res.Machines),
		zap.Int("items", res.Items),
		zap.Int("skipped", res.Skipped))
	return res
}

func toItem(it Item, log *zap.Logger) (*models.Item, bool) {
	typ := models.ParseItemType(it.Type)
	if typ == models.TypeUnknown {
		log.Warn("skipping item of unknown type", zap.String("item", it.Name), zap.String("type", it.Type))
		return nil, false
	}

	item := &models.Item{
		Type:   typ,
		Name:   it.Name,
		Status: models.ParseStatus(it.Status),
	}
	if it.Size != nil && typ.HasSize() {
		if n, ok := utils.ToInt64(it.Size); ok {
			item.Size = models.Size(n)
		} else {
			log.Warn("ignoring unreadable size", zap.String("item", it.Name), zap.Any("size", it.Size))
		}
	}

	for k, v := range map[hash.Kind]string{
		hash.CRC:     it.CRC,
		hash.MD2:     it.MD2,
		hash.MD4:     it.MD4,
		hash.MD5:     it.MD5,
		hash.SHA1:    it.SHA1,
		hash.SHA256:  it.SHA256,
		hash.SHA384:  it.SHA384,
		hash.SHA512:  it.SHA512,
		hash.SpamSum: it.SpamSum,
	} {
		if v != "" {
			item.SetHash(k, v)
		}
	}

	if len(it.Extra) > 0 {
		item.Extra = make(map[string]string, len(it.Extra))
		for k, v := range it.Extra {
			item.Extra[k] = utils.ToString(v)
		}
	}
	return item, true
}
