package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

// errMalformedBody indicates the request body is not a JSON object.
var errMalformedBody = errors.New("malformed request body")

func decodeObject(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errMalformedBody
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return gjson.Result{}, errMalformedBody
	}
	return root, nil
}

// fieldOf tags the value stored under key with the JSON shape it arrived in.
// key must be a plain gjson path.
func fieldOf(root gjson.Result, key string) models.Field {
	value := root.Get(key)

	switch value.Type {
	case gjson.Null:
		return models.Field{}
	case gjson.String:
		return models.StringField(value.Str)
	case gjson.True, gjson.False:
		return models.Field{Kind: models.FieldBool}
	case gjson.Number:
		if !strings.ContainsAny(value.Raw, ".eE") {
			n, err := strconv.ParseInt(value.Raw, 10, 64)
			if err != nil {
				return models.Field{Kind: models.FieldOther}
			}
			return models.IntField(n)
		}
		f, err := strconv.ParseFloat(value.Raw, 64)
		if err != nil {
			return models.Field{Kind: models.FieldOther}
		}
		return models.FloatField(f)
	default:
		return models.Field{Kind: models.FieldOther}
	}
}

func decodeStockRequest(body []byte) (models.StockRequest, error) {
	root, err := decodeObject(body)
	if err != nil {
		return models.StockRequest{}, err
	}
	return models.StockRequest{
		Name:   fieldOf(root, "name"),
		Amount: fieldOf(root, "amount"),
	}, nil
}

func decodeSaleRequest(body []byte) (models.SaleRequest, error) {
	root, err := decodeObject(body)
	if err != nil {
		return models.SaleRequest{}, err
	}
	return models.SaleRequest{
		Name:   fieldOf(root, "name"),
		Amount: fieldOf(root, "amount"),
		Price:  fieldOf(root, "price"),
	}, nil
}
