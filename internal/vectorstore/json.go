package vectorstore

import "encoding/json"

func metadataToJSON(m map[string]string) []byte {
	if m == nil {
		m = map[string]string{}
	}
	b, _ := json.Marshal(m)
	return b
}

func filtersToJSON(f SearchFilter) []byte {
	return metadataToJSON(map[string]string(f))
}

func jsonToMetadata(b []byte) map[string]string {
	out := make(map[string]string)
	_ = json.Unmarshal(b, &out)
	return out
}
