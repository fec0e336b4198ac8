package datjson

import (
	"io"

	"dat-manager/core/hash"
	"dat-manager/core/models"
	"dat-manager/core/store"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Build groups the live items of s by machine, resolving colliding names
// first. It rebuckets s by machine name and removes exact duplicates.
func Build(s *store.Store, header Header) *Document {
	s.BucketBy(store.KeyMachine, s.DedupedBy(), false, true)

	doc := &Document{Header: header, Machines: []Machine{}}
	for _, key := range s.SortedBuckets() {
		ids := s.ResolveNames(key)
		if len(ids) == 0 {
			continue
		}

		var machine *Machine
		for _, id := range ids {
			ref, ok := s.Ref(id)
			if !ok {
				continue
			}
			if machine == nil {
				machine = &Machine{Name: key}
				if ref.Machine != nil {
					machine.Name = ref.Machine.Name
					machine.Description = ref.Machine.Description
					machine.CloneOf = ref.Machine.CloneOf
					machine.RomOf = ref.Machine.RomOf
					machine.SampleOf = ref.Machine.SampleOf
					machine.Extra = ref.Machine.Extra
				}
			}
			machine.Items = append(machine.Items, fromItem(ref.Item))
		}
		if machine != nil {
			doc.Machines = append(doc.Machines, *machine)
		}
	}
	return doc
}

// Write encodes the live items of s as an indented document.
func Write(w io.Writer, s *store.Store, header Header, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	doc := Build(s, header)
	if err := Encode(w, doc); err != nil {
		return err
	}
	log.Debug("document written", zap.String("name", header.Name), zap.Int("machines", len(doc.Machines)))
	return nil
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return Error.New("failed to encode document: %w", err)
	}
	return nil
}

func fromItem(item *models.Item) Item {
	out := Item{
		Type:    item.Type.String(),
		Name:    item.Name,
		CRC:     item.Hashes.Get(hash.CRC),
		MD2:     item.Hashes.Get(hash.MD2),
		MD4:     item.Hashes.Get(hash.MD4),
		MD5:     item.Hashes.Get(hash.MD5),
		SHA1:    item.Hashes.Get(hash.SHA1),
		SHA256:  item.Hashes.Get(hash.SHA256),
		SHA384:  item.Hashes.Get(hash.SHA384),
		SHA512:  item.Hashes.Get(hash.SHA512),
		SpamSum: item.Hashes.Get(hash.SpamSum),
		Status:  item.Status.String(),
	}
	if item.Size != nil {
		out.Size = *item.Size
	}
	if item.Dupe != 0 {
		out.Dupe = item.Dupe.String()
	}
	if len(item.Extra) > 0 {
		out.Extra = make(map[string]any, len(item.Extra))
		for k, v := range item.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
