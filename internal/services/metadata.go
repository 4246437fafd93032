package services

import (
	"encoding/json"
	"strconv"
)

func metadataJSON(values map[string]string) string {
	if len(values) == 0 {
		return "{}"
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

func stringPtr(value string) *string {
	return &value
}

func itoa(value int) string {
	return strconv.Itoa(value)
}
