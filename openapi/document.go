package openapi

import (
	"encoding/json"

	"github.com/go-openapi/spec"
)

const toyRef = "#/definitions/Toy"

// Document describes the toy HTTP API as a Swagger 2.0 document served
// from host (e.g. "localhost:3030").
func Document(host string) *spec.Swagger {
	toySchema := spec.Schema{
		SchemaProps: spec.SchemaProps{
			Type: spec.StringOrArray{"object"},
			Properties: map[string]spec.Schema{
				"_id":       *spec.StringProperty().WithDescription("Identifier assigned by the store"),
				"name":      *spec.StringProperty(),
				"price":     *spec.Float64Property().WithDescription("null when the submitted price was not a number"),
				"labels":    *spec.ArrayProperty(spec.StringProperty()),
				"createdAt": *spec.Int64Property().WithDescription("Unix milliseconds"),
			},
		},
	}
	removedSchema := spec.Schema{
		SchemaProps: spec.SchemaProps{
			Type: spec.StringOrArray{"object"},
			Properties: map[string]spec.Schema{
				"msg":   *spec.StringProperty(),
				"toyId": *spec.StringProperty(),
			},
		},
	}

	failure := spec.NewResponse().WithDescription("Request failed; plain-text message")
	toyID := spec.PathParam("toyId").Typed("string", "")

	query := spec.NewOperation("queryToys").
		WithSummary("List toys").
		WithDescription("filterBy and sortBy accept bracket notation (filterBy[txt]=bear) or a JSON object.").
		WithTags("toy").
		AddParam(spec.QueryParam("filterBy").Typed("string", "").WithDescription("txt, minPrice, maxPrice, labels")).
		AddParam(spec.QueryParam("sortBy").Typed("string", "").WithDescription("type (name|price|createdAt), desc (-1 for descending)")).
		AddParam(spec.QueryParam("pageIdx").Typed("string", "").WithDescription("Zero-based page index; empty returns every toy")).
		RespondsWith(200, spec.NewResponse().WithDescription("Matching toys").WithSchema(spec.ArrayProperty(spec.RefSchema(toyRef)))).
		RespondsWith(400, failure)

	get := spec.NewOperation("getToy").
		WithSummary("Get a toy").
		WithTags("toy").
		AddParam(toyID).
		RespondsWith(200, spec.NewResponse().WithDescription("The toy").WithSchema(spec.RefSchema(toyRef))).
		RespondsWith(400, failure)

	add := spec.NewOperation("addToy").
		WithSummary("Create a toy").
		WithTags("toy").
		AddParam(spec.BodyParam("toy", spec.RefSchema(toyRef))).
		RespondsWith(200, spec.NewResponse().WithDescription("The saved toy").WithSchema(spec.RefSchema(toyRef))).
		RespondsWith(400, failure)

	update := spec.NewOperation("updateToy").
		WithSummary("Update a toy").
		WithTags("toy").
		AddParam(spec.BodyParam("toy", spec.RefSchema(toyRef))).
		RespondsWith(200, spec.NewResponse().WithDescription("The saved toy").WithSchema(spec.RefSchema(toyRef))).
		RespondsWith(400, failure)

	remove := spec.NewOperation("removeToy").
		WithSummary("Delete a toy").
		WithTags("toy").
		AddParam(toyID).
		RespondsWith(200, spec.NewResponse().WithDescription("Removal status").WithSchema(&removedSchema)).
		RespondsWith(400, failure)

	doc := spec.NewOperation("openapiDocument").
		WithSummary("This document").
		RespondsWith(200, spec.NewResponse().WithDescription("Swagger 2.0 JSON"))

	return &spec.Swagger{
		SwaggerProps: spec.SwaggerProps{
			Swagger:  "2.0",
			Host:     host,
			BasePath: "/api",
			Schemes:  []string{"http"},
			Consumes: []string{"application/json"},
			Produces: []string{"application/json"},
			Info: &spec.Info{
				InfoProps: spec.InfoProps{
					Title:       "Toy API",
					Description: "CRUD over the toy collection",
					Version:     "1.0.0",
				},
			},
			Paths: &spec.Paths{
				Paths: map[string]spec.PathItem{
					"/toy": {PathItemProps: spec.PathItemProps{Get: query, Post: add, Put: update}},
					"/toy/{toyId}": {PathItemProps: spec.PathItemProps{Get: get, Delete: remove}},
					"/openapi.json": {PathItemProps: spec.PathItemProps{Get: doc}},
				},
			},
			Definitions: spec.Definitions{"Toy": toySchema},
		},
	}
}

// MarshalDocument renders Document(host) as indented JSON.
func MarshalDocument(host string) ([]byte, error) {
	return json.MarshalIndent(Document(host), "", "  ")
}
