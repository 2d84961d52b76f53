// Package docs registers the admin API description with swag so gin-swagger
// can serve it at /swagger/index.html.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/admin/orders": {
            "get": {
                "tags": ["orders"],
                "summary": "List pending orders, newest first",
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.ListResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/admin/orders/{id}/fulfill": {
            "post": {
                "tags": ["orders"],
                "summary": "Mark an order as sold",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.Receipt"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/admin/orders/{id}": {
            "delete": {
                "tags": ["orders"],
                "summary": "Cancel an order",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/admin/products": {
            "get": {
                "tags": ["products"],
                "summary": "List all products",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/product.ListResponse"}}}
            },
            "post": {
                "tags": ["products"],
                "summary": "Create a product",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/product.ProductRequest"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/admin/products/{id}": {
            "put": {
                "tags": ["products"],
                "summary": "Replace a product",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/product.ProductRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            },
            "delete": {
                "tags": ["products"],
                "summary": "Delete a product and its images",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/admin/products/export": {
            "get": {"tags": ["reports"], "summary": "Products as xlsx", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "OK"}}}
        },
        "/admin/sales": {
            "get": {"tags": ["reports"], "summary": "Units sold per product", "responses": {"200": {"description": "OK"}}}
        },
        "/admin/sales/export": {
            "get": {"tags": ["reports"], "summary": "Sales as xlsx", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "OK"}}}
        },
        "/admin/customers": {
            "get": {"tags": ["reports"], "summary": "Items purchased per customer phone", "responses": {"200": {"description": "OK"}}}
        },
        "/admin/customers/export": {
            "get": {"tags": ["reports"], "summary": "Customers as xlsx", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "OK"}}}
        },
        "/admin/company": {
            "put": {
                "tags": ["company"],
                "summary": "Save company info",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/company.Info"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/company.Info"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/admin/uploads/{folder}": {
            "post": {
                "tags": ["media"],
                "summary": "Upload an image into products or promotions",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"type": "string", "name": "folder", "in": "path", "required": true},
                    {"type": "file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/api/admins": {
            "get": {
                "tags": ["admins"],
                "summary": "List normal admins",
                "parameters": [{"type": "string", "name": "requesterId", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            },
            "post": {
                "tags": ["admins"],
                "summary": "Create a normal admin",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/admin.CreateRequest"}}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            },
            "put": {
                "tags": ["admins"],
                "summary": "Edit a normal admin",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/admin.EditRequest"}}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            },
            "delete": {
                "tags": ["admins"],
                "summary": "Delete a normal admin",
                "parameters": [
                    {"type": "string", "name": "id", "in": "query", "required": true},
                    {"type": "string", "name": "requesterId", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/api/admins/password": {
            "put": {
                "tags": ["admins"],
                "summary": "Reset a normal admin's password",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/admin.ResetPasswordRequest"}}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/auth/sign-in": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign in with email and password",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["auth"],
                "summary": "Current user from the bearer token",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        }
    },
    "definitions": {
        "httpx.HTTPError": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "not found"}}
        },
        "order.ListResponse": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "items": {"type": "array", "items": {"type": "object"}}
            }
        },
        "order.Receipt": {
            "type": "object",
            "properties": {
                "order_id": {"type": "string"},
                "items_sold": {"type": "integer"},
                "stock": {"type": "object", "additionalProperties": {"type": "integer"}},
                "skipped_products": {"type": "array", "items": {"type": "string"}}
            }
        },
        "product.ListResponse": {
            "type": "object",
            "properties": {
                "q": {"type": "string"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "items": {"type": "array", "items": {"type": "object"}}
            }
        },
        "product.ProductRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Habesha Runner"},
                "description": {"type": "string"},
                "item_number": {"type": "integer", "example": 12},
                "price": {"type": "string", "example": "2500.00"},
                "fake_price": {"type": "string"},
                "discount": {"type": "boolean"},
                "discount_price": {"type": "string"},
                "discount_label": {"type": "string"},
                "images": {"type": "array", "items": {"type": "string"}},
                "sizes": {"type": "array", "items": {"type": "string"}}
            }
        },
        "company.Info": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "GeezShoe"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "about": {"type": "string"},
                "socials": {"type": "object", "additionalProperties": {"type": "string"}},
                "promo_images": {"type": "array", "items": {"type": "string"}}
            }
        },
        "admin.CreateRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "requesterId": {"type": "string"}
            }
        },
        "admin.EditRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "requesterId": {"type": "string"}
            }
        },
        "admin.ResetPasswordRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "newPassword": {"type": "string"},
                "requesterId": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "GeezShoe admin API",
	Description:      "Back office: orders, catalog, company info, reports and admin accounts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
