// Package contract is the single description of the HTTP API shared by the
// server routes and the Go client. It holds data only.
package contract

import (
	"net/http"
	"sort"
)

// Access says which principal an operation requires.
type Access int

const (
	Public Access = iota
	// OptionalAuth resolves the principal when the request carries one.
	OptionalAuth
	Authenticated
	Admin
)

// Field describes one input field: its wire name, type and constraint.
type Field struct {
	Name     string
	Type     string
	Required bool
	Rule     string
}

// Response shapes.
const (
	ShapeChannel     = "Channel"
	ShapeChannelList = "Channel[]"
	ShapeCartLines   = "CartLine[]"
	ShapeCartItem    = "CartItem"
	ShapeOrder       = "Order"
	ShapeOrderList   = "Order[]"
	ShapeUserOrNull  = "User|null"
	ShapeValidation  = "ValidationError"
	ShapeNotFound    = "NotFoundError"
	ShapeConflict    = "ConflictError"
	ShapeRateLimited = "RateLimitError"
	ShapeInternal    = "InternalError"
	ShapeNone        = ""
)

type Operation struct {
	Resource  string
	Name      string
	Method    string
	Path      string
	Access    Access
	Query     []Field
	Body      []Field
	Success   int
	Responses map[int]string
}

// Key identifies the operation, e.g. "cart.add".
func (o Operation) Key() string {
	return o.Resource + "." + o.Name
}

var channelInput = []Field{
	{Name: "name", Type: "string", Required: true, Rule: "1-200 chars"},
	{Name: "description", Type: "string", Required: true, Rule: "1-4000 chars"},
	{Name: "username", Type: "string", Required: true, Rule: "1-100 chars"},
	{Name: "avatarUrl", Type: "string", Required: true, Rule: "1-2048 chars"},
	{Name: "category", Type: "string", Required: true, Rule: "1-100 chars"},
	{Name: "platform", Type: "string", Rule: "telegram|tiktok, default telegram"},
	{Name: "subscribers", Type: "integer", Required: true, Rule: ">= 0"},
	{Name: "views", Type: "integer", Required: true, Rule: ">= 0"},
	{Name: "err", Type: "number", Required: true, Rule: ">= 0"},
	{Name: "price", Type: "integer", Required: true, Rule: ">= 0"},
	{Name: "verified", Type: "boolean", Rule: "default false"},
}

func optional(fields []Field) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		f.Required = false
		out[i] = f
	}
	return out
}

var (
	ChannelsList = Operation{
		Resource: "channels", Name: "list",
		Method: http.MethodGet, Path: "/api/channels",
		Query: []Field{
			{Name: "search", Type: "string", Rule: "substring of name, ASCII case-insensitive"},
			{Name: "category", Type: "string", Rule: "exact"},
			{Name: "platform", Type: "string", Rule: "exact"},
			{Name: "minPrice", Type: "integer", Rule: "price >= value"},
			{Name: "maxPrice", Type: "integer", Rule: "price <= value"},
			{Name: "minSubs", Type: "integer", Rule: "subscribers >= value"},
		},
		Success: http.StatusOK,
		Responses: map[int]string{
			http.StatusOK:                  ShapeChannelList,
			http.StatusBadRequest:          ShapeValidation,
			http.StatusInternalServerError: ShapeInternal,
		},
	}

	ChannelsSearch = Operation{
		Resource: "channels", Name: "search",
		Method: http.MethodGet, Path: "/api/channels/search",
		Query: []Field{
			{Name: "q", Type: "string", Required: true, Rule: "full-text query"},
			{Name: "limit", Type: "integer", Rule: "1-100, default 20"},
		},
		Success: http.StatusOK,
		Responses: map[int]string{
			http.StatusOK:                  ShapeChannelList,
			http.StatusBadRequest:          ShapeValidation,
			http.StatusInternalServerError: ShapeInternal,
		},
	}

	ChannelsGet = Operation{
		Resource: "channels", Name: "get",
		Method: http.MethodGet, Path: "/api/channels/:id",
		Success: http.StatusOK,
		Responses: map[int]string{
			http.StatusOK:                  ShapeChannel,
			http.StatusBadRequest:          ShapeValidation,
			http.StatusNotFound:            ShapeNotFound,
			http.StatusInternalServerError: ShapeInternal,
		},
	}

	ChannelsCreate = Operation{
		Resource: "channels", Name: "create",
		Method: http.MethodPost, Path: "/api/channels",
		Access:  Admin,
		Body:    channelInput,
		Success: http.StatusCreated,
		Responses: map[int]string{
			http.StatusCreated:             ShapeChannel,
			http.StatusBadRequest:          ShapeValidation,
			http.StatusInternalServerError: ShapeInternal,
		},
	}

	ChannelsUpdate = Operation{
		Resource: "channels", Name: "update",
		Method: http.MethodPatch, Path: "/api/channels/:id",
		Access:  Admin,
		Body:    optional(channelInput),
		Success: http.StatusOK,
		Responses: map[int]string{
			http.StatusOK:                  ShapeChannel,
			http.StatusBadRequest:          ShapeValidation,
			http.StatusNotFound:            ShapeNotFound,
			http.StatusInternalServerError: ShapeInternal,
		},
	}

	ChannelsDelete = Operation{
		Resource: "channels", Name: "delete",
		Method: http.MethodDelete, Path: "/api/channels/:id",
		Access:  Admin,
		Success: http.StatusNoContent,
		Responses: map[int]string{
			http.StatusNoContent:           ShapeNone,
			http.StatusBadRequest:          ShapeValidation,
			http.StatusNotFound:            ShapeNotFound,
			http.StatusInternalServerError: ShapeInternal,
		},
	}

	CartList = Operation{
		Resource: "cart", Name: "list",
		Method: http.MethodGet, Path: "/api/cart",
		Access:  Authenticated,
		Success: http.StatusOK,
		Responses: map[int]string{
			http.StatusOK:                  ShapeCartLines,
			http.StatusInternalServerError: ShapeInternal,
		},
	}

	CartAdd = Operation{
		Resource: "cart", Name: "add",
		Method: http.MethodPost, Path: "/api/cart",
		Access: Authenticated,
		Body: []Field{
			{Name: "channelId", Type: "integer", Required: true, Rule: "id of an existing channel"},
		},
		Success: http.StatusCreated,
		Responses: map[int]string{
			http.StatusCreated:             ShapeCartItem,
			http.StatusOK:                  ShapeCartItem,
			http.StatusBadRequest:          ShapeValidation,
			http.StatusConflict:            ShapeConflict,
			http.StatusTooManyRequests:     ShapeRateLimited,
			http.StatusInternalServerError: ShapeInternal,
		},
	}

	CartRemove = Operation{
		Resource: "cart", Name: "remove",
		Method: http.MethodDelete, Path: "/api/cart/:id",
		Access:  Authenticated,
		Success: http.StatusNoContent,
		Responses: map[int]string{
			http.StatusNoContent:           ShapeNone,
			http.StatusBadRequest:          ShapeValidation,
			http.StatusTooManyRequests:     ShapeRateLimited,
			http.StatusInternalServerError: ShapeInternal,
		},
	}

	CartCheckout = Operation{
		Resource: "cart", Name: "checkout",
		Method: http.MethodPost, Path: "/api/cart/checkout",
		Access:  Authenticated,
		Success: http.StatusCreated,
		Responses: map[int]string{
			http.StatusCreated:             ShapeOrder,
			http.StatusBadRequest:          ShapeValidation,
			http.StatusTooManyRequests:     ShapeRateLimited,
			http.StatusInternalServerError: ShapeInternal,
		},
	}

	OrdersList = Operation{
		Resource: "orders", Name: "list",
		Method: http.MethodGet, Path: "/api/orders",
		Access:  Authenticated,
		Success: http.StatusOK,
		Responses: map[int]string{
			http.StatusOK:                  ShapeOrderList,
			http.StatusInternalServerError: ShapeInternal,
		},
	}

	AuthMe = Operation{
		Resource: "auth", Name: "me",
		Method: http.MethodGet, Path: "/api/user",
		Access:  OptionalAuth,
		Success: http.StatusOK,
		Responses: map[int]string{
			http.StatusOK:                  ShapeUserOrNull,
			http.StatusInternalServerError: ShapeInternal,
		},
	}
)

var table = []Operation{
	ChannelsList, ChannelsSearch, ChannelsGet, ChannelsCreate, ChannelsUpdate, ChannelsDelete,
	CartList, CartAdd, CartRemove, CartCheckout,
	OrdersList,
	AuthMe,
}

// Table returns every operation, sorted by key.
func Table() []Operation {
	out := make([]Operation, len(table))
	copy(out, table)
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

func Lookup(key string) (Operation, bool) {
	for _, op := range table {
		if op.Key() == key {
			return op, true
		}
	}
	return Operation{}, false
}
