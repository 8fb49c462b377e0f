// Package swagger holds the hand-maintained OpenAPI document served at /swagger/*.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/books": {
            "get": {
                "tags": ["books"],
                "summary": "List books",
                "parameters": [
                    {"type": "string", "description": "substring of title, author or ISBN", "name": "q", "in": "query"},
                    {"type": "string", "description": "exact genre", "name": "genre", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Book"}}}}
            },
            "post": {
                "tags": ["books"],
                "summary": "Add a book",
                "parameters": [{"name": "book", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.BookRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.CreatedResponse"}},
                    "400": {"description": "Duplicate ISBN or invalid input"}
                }
            }
        },
        "/api/books/{id}": {
            "get": {
                "tags": ["books"],
                "summary": "Get a book",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Book"}},
                    "404": {"description": "Not Found"}
                }
            },
            "put": {
                "tags": ["books"],
                "summary": "Update a book",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "book", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.BookRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Duplicate ISBN or invalid input"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "tags": ["books"],
                "summary": "Delete a book",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Open borrowings reference the book"}
                }
            }
        },
        "/api/members": {
            "get": {
                "tags": ["members"],
                "summary": "List members",
                "parameters": [{"type": "string", "description": "substring of name or email", "name": "q", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Member"}}}}
            },
            "post": {
                "tags": ["members"],
                "summary": "Register a member",
                "parameters": [{"name": "member", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.MemberRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.CreatedResponse"}},
                    "400": {"description": "Duplicate email or invalid input"}
                }
            }
        },
        "/api/members/{id}": {
            "get": {
                "tags": ["members"],
                "summary": "Get a member",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Member"}},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "tags": ["members"],
                "summary": "Delete a member",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Open borrowings reference the member"}
                }
            }
        },
        "/api/borrowings": {
            "get": {
                "tags": ["borrowings"],
                "summary": "List borrowings, newest first",
                "parameters": [{"type": "string", "enum": ["borrowed", "returned"], "name": "status", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.BorrowingRecord"}}}}
            },
            "post": {
                "tags": ["borrowings"],
                "summary": "Borrow a book",
                "parameters": [{"name": "borrowing", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.BorrowRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.BorrowResponse"}},
                    "400": {"description": "Book not available"}
                }
            }
        },
        "/api/borrowings/{id}/return": {
            "post": {
                "tags": ["borrowings"],
                "summary": "Return a borrowed book",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found or already returned"}
                }
            }
        },
        "/api/stats": {
            "get": {
                "tags": ["stats"],
                "summary": "Dashboard statistics",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Stats"}}}
            }
        }
    },
    "definitions": {
        "model.Book": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "author": {"type": "string"},
                "isbn": {"type": "string"},
                "genre": {"type": "string"},
                "year": {"type": "integer"},
                "total_copies": {"type": "integer"},
                "available_copies": {"type": "integer"},
                "description": {"type": "string"},
                "cover_url": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "model.BookRequest": {
            "type": "object",
            "required": ["title", "author"],
            "properties": {
                "title": {"type": "string"},
                "author": {"type": "string"},
                "isbn": {"type": "string"},
                "genre": {"type": "string"},
                "year": {"type": "integer"},
                "total_copies": {"type": "integer", "minimum": 0},
                "description": {"type": "string"},
                "cover_url": {"type": "string"}
            }
        },
        "model.Member": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "member_type": {"type": "string", "enum": ["standard", "premium"]},
                "join_date": {"type": "string"},
                "active": {"type": "boolean"}
            }
        },
        "model.MemberRequest": {
            "type": "object",
            "required": ["name", "email"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "member_type": {"type": "string", "enum": ["standard", "premium"]}
            }
        },
        "model.BorrowRequest": {
            "type": "object",
            "required": ["book_id", "member_id"],
            "properties": {
                "book_id": {"type": "integer"},
                "member_id": {"type": "integer"}
            }
        },
        "model.BorrowResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "due_date": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "model.BorrowingRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "book_id": {"type": "integer"},
                "member_id": {"type": "integer"},
                "borrow_date": {"type": "string"},
                "due_date": {"type": "string"},
                "return_date": {"type": "string"},
                "status": {"type": "string", "enum": ["borrowed", "returned"]},
                "book_title": {"type": "string"},
                "book_author": {"type": "string"},
                "member_name": {"type": "string"},
                "member_email": {"type": "string"},
                "overdue": {"type": "boolean"}
            }
        },
        "model.CreatedResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "model.Stats": {
            "type": "object",
            "properties": {
                "total_books": {"type": "integer"},
                "available_books": {"type": "integer"},
                "borrowed_books": {"type": "integer"},
                "overdue_books": {"type": "integer"},
                "total_members": {"type": "integer"},
                "genre_distribution": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Library Catalog API",
	Description:      "Books, members and borrowings of a library catalog.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
