package handlers

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/variant"
)

// variants[<i>][<field>] or variants[<i>][attributes][<j>][<field>]
var variantKey = regexp.MustCompile(`^variants\[(\d+)\]\[(\w+)\](?:\[(\d+)\]\[(\w+)\])?$`)

// parseProductInput reads a product body sent as JSON, urlencoded or multipart.
func parseProductInput(c *fiber.Ctx) (services.ProductInput, error) {
	var in services.ProductInput
	ct := string(c.Request().Header.ContentType())
	if ct == "" || strings.HasPrefix(ct, fiber.MIMEApplicationJSON) {
		if err := json.Unmarshal(c.Body(), &in); err != nil {
			return in, err
		}
		return in, nil
	}

	fields, err := formFields(c)
	if err != nil {
		return in, err
	}
	return productInputFromForm(fields)
}

func formFields(c *fiber.Ctx) (map[string][]string, error) {
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		return form.Value, nil
	}
	fields := make(map[string][]string)
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		fields[string(k)] = append(fields[string(k)], string(v))
	})
	return fields, nil
}

func productInputFromForm(fields map[string][]string) (services.ProductInput, error) {
	var in services.ProductInput
	first := func(key string) (string, bool) {
		v, ok := fields[key]
		if !ok || len(v) == 0 {
			return "", false
		}
		return v[0], true
	}

	if v, ok := first("name"); ok {
		in.Name = &v
	}
	if v, ok := first("slug"); ok {
		in.Slug = &v
	}
	if v, ok := first("price"); ok {
		in.Price = v
	}
	if v, ok := first("discount"); ok {
		in.Discount = v
	}
	if v, ok := first("stock"); ok {
		in.Stock = v
	}
	if v, ok := first("isActive"); ok {
		active, err := cast.ToBoolE(v)
		if err != nil {
			return in, fmt.Errorf("isActive: %w", variant.ErrInvalidField)
		}
		in.IsActive = &active
	}
	if v, ok := fields["optionOrder[]"]; ok {
		in.OptionOrder = v
	} else if v, ok := first("optionOrder"); ok {
		in.OptionOrder = strings.Split(v, ",")
	}
	if v, ok := first("specification"); ok {
		raw, _ := json.Marshal(v)
		in.Specification = raw
	}

	if v, ok := first("variants"); ok {
		// the whole list as one JSON field; variants=[] removes every variant
		in.Variants = []variant.Payload{}
		if err := json.Unmarshal([]byte(v), &in.Variants); err != nil {
			return in, fmt.Errorf("variants: %w", err)
		}
		return in, nil
	}

	variants, err := variantsFromForm(fields)
	if err != nil {
		return in, err
	}
	in.Variants = variants
	return in, nil
}

type formVariant struct {
	payload variant.Payload
	attrs   map[int]*models.Attribute
}

func variantsFromForm(fields map[string][]string) ([]variant.Payload, error) {
	byIndex := make(map[int]*formVariant)
	for key, values := range fields {
		m := variantKey.FindStringSubmatch(key)
		if m == nil || len(values) == 0 {
			continue
		}
		i, _ := strconv.Atoi(m[1])
		fv, ok := byIndex[i]
		if !ok {
			fv = &formVariant{attrs: make(map[int]*models.Attribute)}
			byIndex[i] = fv
		}
		value := values[0]

		if m[3] != "" {
			if m[2] != "attributes" {
				return nil, fmt.Errorf("unexpected form field %s", key)
			}
			j, _ := strconv.Atoi(m[3])
			a, ok := fv.attrs[j]
			if !ok {
				a = &models.Attribute{}
				fv.attrs[j] = a
			}
			switch m[4] {
			case "option", "optionId":
				a.OptionID = value
			case "optionName":
				a.OptionName = value
			case "value":
				a.Value = value
			}
			continue
		}

		switch m[2] {
		case "id", "_id":
			fv.payload.ID = value
		case "price":
			fv.payload.Price = value
		case "stock":
			fv.payload.Stock = value
		case "discount":
			fv.payload.Discount = value
		case "sku":
			sku := value
			fv.payload.SKU = &sku
		}
	}
	if len(byIndex) == 0 {
		return nil, nil
	}

	indexes := make([]int, 0, len(byIndex))
	for i := range byIndex {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	out := make([]variant.Payload, 0, len(indexes))
	for _, i := range indexes {
		fv := byIndex[i]
		attrIdx := make([]int, 0, len(fv.attrs))
		for j := range fv.attrs {
			attrIdx = append(attrIdx, j)
		}
		sort.Ints(attrIdx)
		for _, j := range attrIdx {
			fv.payload.Attributes = append(fv.payload.Attributes, *fv.attrs[j])
		}
		out = append(out, fv.payload)
	}
	return out, nil
}
