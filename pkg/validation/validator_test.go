package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type memberPayload struct {
	Name     string `json:"name" binding:"required,person"`
	Age      int    `json:"age" binding:"gte=0,lte=150"`
	Password string `json:"password" binding:"required,pwd"`
}

func TestToDetails_ValidationErrors(t *testing.T) {
	Init()
	err := binding.Validator.ValidateStruct(&memberPayload{Age: 200, Password: "12"})

	details := ToDetails(err)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be less than or equal to 150", details["age"])
	assert.Equal(t, "must be between 4 and 72 characters long", details["password"])
}

func TestToDetails_JSONErrors(t *testing.T) {
	var p memberPayload
	err := json.Unmarshal([]byte(`{"age":"old"}`), &p)
	assert.Equal(t, map[string]string{"age": "must be int"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{`), &p)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
}

func TestToDetails_Fallbacks(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("eof")))
}
