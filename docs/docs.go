// Package docs holds the OpenAPI description served to API consumers.
package docs

// Info describes the generated swagger document.
type Info struct {
	Title           string
	Description     string
	Version         string
	BasePath        string
	SwaggerTemplate string
}

// SwaggerInfo is the swagger document metadata for the hospital API.
var SwaggerInfo = &Info{
	Title:       "MediSync Hospital API",
	Description: "Hospital management backend: accounts, appointments, beds, donors, handoffs and report analysis.",
	Version:     "1.0",
	BasePath:    "/api/v1",
	SwaggerTemplate: `{
    "swagger": "2.0",
    "info": {
        "title": "MediSync Hospital API",
        "version": "1.0"
    },
    "basePath": "/api/v1",
    "paths": {}
}`,
}
