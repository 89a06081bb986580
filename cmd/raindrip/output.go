package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	errs "raindrip/internal/errors"
	"raindrip/internal/toon"
)

// outputValue prints v to stdout in the active output format. TOON and
// YAML both go through the ordered value model so field order survives.
func outputValue(v any) error {
	switch formatFlag {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errs.NewInternalError(err)
		}
		fmt.Println(string(data))
	case "yaml":
		model, err := toModel(v)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(yamlNode(model))
		if err != nil {
			return errs.NewInternalError(err)
		}
		fmt.Print(string(data))
	default:
		text, err := toon.EncodeWithOptions(v, toon.EncodeOptions{
			Indent:    settings.ToonIndent,
			Delimiter: settings.Delimiter(),
		})
		if err != nil {
			return errs.WrapCodec(err)
		}
		fmt.Println(text)
	}
	return nil
}

// printError renders an error payload in the active format. Used for
// every failure, so it must not itself fail: it falls back to plain JSON.
func printError(err error) {
	cliErr := errs.AsCLIError(err)
	payload := toon.Object{
		{Key: "error", Value: cliErr.Message},
		{Key: "status", Value: float64(cliErr.Status)},
	}
	if cliErr.Hint != "" {
		payload = append(payload, toon.Member{Key: "hint", Value: cliErr.Hint})
	}

	if outErr := outputValue(payload); outErr != nil {
		data, _ := json.Marshal(payload)
		fmt.Fprintln(os.Stderr, string(data))
	}
}

// toModel converts any encodable value into the ordered TOON value model
// by way of its JSON form.
func toModel(v any) (any, error) {
	switch v.(type) {
	case nil, bool, float64, string, []any, toon.Object:
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errs.NewInternalError(err)
	}
	model, err := toon.ParseJSON(data)
	if err != nil {
		return nil, errs.NewInternalError(err)
	}
	return model, nil
}

// yamlNode builds a yaml.Node tree from the value model. yaml.v3 maps
// would reorder keys; explicit mapping nodes keep document order.
func yamlNode(v any) *yaml.Node {
	switch val := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(val)}
	case float64:
		if val == float64(int64(val)) {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(val), 10)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(val, 'f', -1, 64)}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: val}
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			node.Content = append(node.Content, yamlNode(item))
		}
		return node
	case toon.Object:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range val {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Key},
				yamlNode(m.Value))
		}
		return node
	default:
		// Unreachable for model values; render via fmt as a last resort.
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprintf("%v", val)}
	}
}
