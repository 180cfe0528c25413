package document

import "github.com/vk/palacegrid/internal/entity"

type tagged interface {
	Tag() string
	Payload() entity.Payload
}

// group buckets records by tag and emits one field per non-empty kind, in
// the order of kinds. A single member is emitted as a bare object unless
// arrays is set; two or more members are emitted as an array in input order.
func group[T tagged](records []T, kinds []string, arrays bool) entity.Payload {
	var p entity.Payload
	for _, kind := range kinds {
		var members []entity.Payload
		for _, r := range records {
			if r.Tag() == kind {
				members = append(members, r.Payload())
			}
		}
		switch {
		case len(members) == 0:
		case len(members) == 1 && !arrays:
			p = append(p, entity.Field{Key: kind, Value: members[0]})
		default:
			p = append(p, entity.Field{Key: kind, Value: members})
		}
	}
	return p
}

func names[K ~string](kinds []K) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
