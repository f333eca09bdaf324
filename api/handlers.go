package api

import (
	"encoding/json"
	"net/http"
	"toyshop/toy"

	"github.com/gorilla/mux"
	"github.com/mitchellh/mapstructure"
)

// Logger is the logging collaborator used by the handlers.
type Logger interface {
	Info(msg string)
	Error(msg string, err error)
}

// ToyHandler holds a reference to the toy service.
type ToyHandler struct {
	toys toy.Service
	log  Logger
}

// NewToyHandler creates a new handler for the toy API.
func NewToyHandler(svc toy.Service, log Logger) *ToyHandler {
	return &ToyHandler{toys: svc, log: log}
}

// toyBody is the request body of POST and PUT. Price stays raw so it can be
// coerced like a browser would, missing values included. Name and labels
// accept any JSON type and are converted by toy().
type toyBody struct {
	ID     string          `json:"_id"`
	Name   any             `json:"name"`
	Price  json.RawMessage `json:"price"`
	Labels any             `json:"labels"`
}

// toy converts the body without validating it: a number name becomes its
// text and a single label becomes a one-element list.
func (b toyBody) toy() (toy.Toy, error) {
	var fields struct {
		Name   string   `mapstructure:"name"`
		Labels []string `mapstructure:"labels"`
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &fields,
	})
	if err != nil {
		return toy.Toy{}, err
	}
	in := map[string]any{}
	if b.Name != nil {
		in["name"] = b.Name
	}
	if b.Labels != nil {
		in["labels"] = b.Labels
	}
	if err := dec.Decode(in); err != nil {
		return toy.Toy{}, err
	}
	return toy.Toy{
		ID:     b.ID,
		Name:   fields.Name,
		Price:  toy.CoercePrice(b.Price),
		Labels: fields.Labels,
	}, nil
}

type removeResponse struct {
	Msg   string `json:"msg"`
	ToyID string `json:"toyId"`
}

// QueryToys returns the toys matching filterBy, sortBy and pageIdx.
func (h *ToyHandler) QueryToys(w http.ResponseWriter, r *http.Request) {
	filterBy, sortBy, pageIdx, err := parseQuery(r.URL.Query())
	if err != nil {
		h.fail(w, "Cannot load toys", err)
		return
	}

	toys, err := h.toys.Query(r.Context(), filterBy, sortBy, pageIdx)
	if err != nil {
		h.fail(w, "Cannot load toys", err)
		return
	}
	if toys == nil {
		toys = []toy.Toy{}
	}
	writeJSON(w, toys)
}

// GetToy returns a single toy by its id.
func (h *ToyHandler) GetToy(w http.ResponseWriter, r *http.Request) {
	toyID := mux.Vars(r)["toyId"]

	t, err := h.toys.Get(r.Context(), toyID)
	if err != nil {
		h.fail(w, "Cannot get toy", err)
		return
	}
	writeJSON(w, t)
}

// AddToy creates a toy from name, price and labels. Any _id is ignored.
func (h *ToyHandler) AddToy(w http.ResponseWriter, r *http.Request) {
	var body toyBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.fail(w, "Cannot add toy", err)
		return
	}

	body.ID = ""
	newToy, err := body.toy()
	if err != nil {
		h.fail(w, "Cannot add toy", err)
		return
	}
	saved, err := h.toys.Save(r.Context(), newToy)
	if err != nil {
		h.fail(w, "Cannot add toy", err)
		return
	}
	writeJSON(w, saved)
}

// UpdateToy saves name, price and labels on the toy identified by _id.
func (h *ToyHandler) UpdateToy(w http.ResponseWriter, r *http.Request) {
	var body toyBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.fail(w, "Cannot update toy", err)
		return
	}
	if body.ID == "" {
		// Without an id the store would create a toy instead.
		h.fail(w, "Cannot update toy", errMissingID)
		return
	}

	updated, err := body.toy()
	if err != nil {
		h.fail(w, "Cannot update toy", err)
		return
	}
	saved, err := h.toys.Save(r.Context(), updated)
	if err != nil {
		h.fail(w, "Cannot update toy", err)
		return
	}
	writeJSON(w, saved)
}

// RemoveToy deletes a toy and echoes its id.
func (h *ToyHandler) RemoveToy(w http.ResponseWriter, r *http.Request) {
	toyID := mux.Vars(r)["toyId"]

	msg, err := h.toys.Remove(r.Context(), toyID)
	if err != nil {
		h.fail(w, "Cannot delete toy", err)
		return
	}
	writeJSON(w, removeResponse{Msg: msg, ToyID: toyID})
}

// fail logs err and answers 400 with msg as plain text.
func (h *ToyHandler) fail(w http.ResponseWriter, msg string, err error) {
	h.log.Error(msg, err)
	http.Error(w, msg, http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
