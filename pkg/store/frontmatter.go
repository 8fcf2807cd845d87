package store

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const frontMatterDelim = "---\n"

// encodeFrontMatter renders a YAML front-matter block followed by a plain
// text body, the shape of every record under stages/, sessions/, signals/,
// and handoffs/.
func encodeFrontMatter(v any, body string) ([]byte, error) {
	yamlBytes, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(frontMatterDelim)
	buf.Write(yamlBytes)
	buf.WriteString(frontMatterDelim)
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
	}
	return buf.Bytes(), nil
}

// decodeFrontMatter splits data into its YAML front-matter block and
// trailing body, decoding the former strictly into v.
func decodeFrontMatter(data []byte, v any) (body string, err error) {
	if !bytes.HasPrefix(data, []byte(frontMatterDelim)) {
		return "", fmt.Errorf("missing front-matter start delimiter")
	}
	rest := data[len(frontMatterDelim):]
	end := bytes.Index(rest, []byte(frontMatterDelim))
	if end < 0 {
		return "", fmt.Errorf("missing front-matter end delimiter")
	}

	dec := yaml.NewDecoder(bytes.NewReader(rest[:end]))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return "", fmt.Errorf("decode front matter: %w", err)
	}

	body = string(bytes.TrimPrefix(rest[end+len(frontMatterDelim):], []byte("\n")))
	return body, nil
}
