// Package docs FlipNews API
//
// FlipNews proxies filtered news queries to TheNewsAPI while keeping the
// API credential on the server.
//
//	Schemes: http, https
//	Host: localhost:5177
//	BasePath: /api
//	Version: 1.0.0
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs

import "github.com/swaggo/swag"

// @title FlipNews API
// @version 1.0
// @description News proxy forwarding filtered queries to TheNewsAPI

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5177
// @BasePath /api

func init() {
	swag.Register(swag.Name, &swag.Spec{
		InfoInstanceName: "swagger",
		SwaggerTemplate:  docTemplate,
	})
}

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "FlipNews API",
        "description": "News proxy forwarding filtered queries to TheNewsAPI",
        "version": "1.0.0",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        }
    },
    "host": "localhost:5177",
    "basePath": "/api",
    "schemes": ["http", "https"],
    "paths": {
        "/health": {
            "get": {
                "description": "Reports that the proxy is up",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/Health"}
                    }
                }
            }
        },
        "/news/all": {
            "get": {
                "description": "Returns one page of articles. A non-empty search wins over categories; with neither, the tech category is used.",
                "produces": ["application/json"],
                "tags": ["News"],
                "summary": "Query news",
                "parameters": [
                    {"type": "string", "description": "Comma-separated categories", "name": "categories", "in": "query"},
                    {"type": "string", "description": "Free-text search", "name": "search", "in": "query"},
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 3, "description": "Articles per page", "name": "limit", "in": "query"},
                    {"type": "string", "default": "en", "description": "Language code", "name": "language", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PageResult"}},
                    "400": {"description": "Invalid query parameters", "schema": {"$ref": "#/definitions/Error"}},
                    "401": {"description": "Auth Error", "schema": {"$ref": "#/definitions/Error"}},
                    "403": {"description": "Auth Error", "schema": {"$ref": "#/definitions/Error"}},
                    "429": {"description": "Rate Limit", "schema": {"$ref": "#/definitions/Error"}},
                    "500": {"description": "Server Misconfiguration or Internal Server Error", "schema": {"$ref": "#/definitions/Error"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        }
    },
    "definitions": {
        "Health": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "timestamp": {"type": "string", "format": "date-time"}
            }
        },
        "Error": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Meta": {
            "type": "object",
            "properties": {
                "found": {"type": "integer"},
                "returned": {"type": "integer"},
                "limit": {"type": "integer"},
                "page": {"type": "integer"}
            }
        },
        "Article": {
            "type": "object",
            "properties": {
                "uuid": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "keywords": {"type": "string"},
                "snippet": {"type": "string"},
                "url": {"type": "string"},
                "image_url": {"type": "string"},
                "language": {"type": "string"},
                "published_at": {"type": "string", "format": "date-time"},
                "source": {"type": "string"},
                "categories": {"type": "array", "items": {"type": "string"}}
            }
        },
        "PageResult": {
            "type": "object",
            "properties": {
                "meta": {"$ref": "#/definitions/Meta"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/Article"}}
            }
        }
    },
    "tags": [
        {"name": "Health", "description": "Health check endpoints"},
        {"name": "News", "description": "News proxy endpoints"}
    ]
}`
