package docs

import (
	"encoding/json"
	"testing"
)

func TestSwaggerInfo(t *testing.T) {
	if SwaggerInfo == nil {
		t.Fatal("SwaggerInfo is nil")
	}
	if SwaggerInfo.Title != "MediSync Hospital API" {
		t.Errorf("Title = %q", SwaggerInfo.Title)
	}
	if SwaggerInfo.BasePath != "/api/v1" {
		t.Errorf("BasePath = %q", SwaggerInfo.BasePath)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(SwaggerInfo.SwaggerTemplate), &doc); err != nil {
		t.Fatalf("SwaggerTemplate is not valid JSON: %v", err)
	}
	if _, ok := doc["paths"]; !ok {
		t.Error("SwaggerTemplate missing paths object")
	}
	if doc["basePath"] != "/api/v1" {
		t.Errorf("template basePath = %v", doc["basePath"])
	}
}
