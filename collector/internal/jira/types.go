package jira

import "encoding/json"

// Issue is one upstream issue record, flattened from the Jira wire shape.
// Immutable once yielded by the client; owned by the pipeline for the
// duration of one run and never persisted.
type Issue struct {
	ID         string
	Key        string
	Type       string // issue type name, e.g. "Bug"
	Status     string // workflow status name as reported upstream
	Labels     []string
	Components []string
	Summary    string

	// CustomFields holds the string-valued customfield_* entries of the
	// record, keyed by field ID. Select-list fields contribute their
	// "value" member.
	CustomFields map[string]string
}

// searchRequest is the POST body for /rest/api/3/search/jql.
type searchRequest struct {
	JQL           string   `json:"jql"`
	MaxResults    int      `json:"maxResults"`
	Fields        []string `json:"fields"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

// searchPage is one page of the cursor-paginated search response.
// Issues is a pointer so a response missing the field entirely can be told
// apart from an empty page — the former is a protocol error.
type searchPage struct {
	Issues        *[]wireIssue `json:"issues"`
	NextPageToken string       `json:"nextPageToken"`
	IsLast        bool         `json:"isLast"`
}

// wireIssue mirrors the upstream issue envelope.
type wireIssue struct {
	ID     string     `json:"id"`
	Key    string     `json:"key"`
	Fields wireFields `json:"fields"`
}

// wireFields carries the requested issue fields. Custom fields arrive as
// sibling keys of the named ones, so decoding happens in two passes: the
// known shape, then a key scan for customfield_* entries.
type wireFields struct {
	Summary   string `json:"summary"`
	IssueType struct {
		Name string `json:"name"`
	} `json:"issuetype"`
	Status struct {
		Name string `json:"name"`
	} `json:"status"`
	Labels     []string `json:"labels"`
	Components []struct {
		Name string `json:"name"`
	} `json:"components"`

	custom map[string]string
}

func (f *wireFields) UnmarshalJSON(data []byte) error {
	type plain wireFields
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if len(k) < len("customfield_") || k[:len("customfield_")] != "customfield_" {
			continue
		}
		// Plain string field.
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if p.custom == nil {
				p.custom = make(map[string]string)
			}
			p.custom[k] = s
			continue
		}
		// Select-list field: {"value": "..."}.
		var sel struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(v, &sel); err == nil && sel.Value != "" {
			if p.custom == nil {
				p.custom = make(map[string]string)
			}
			p.custom[k] = sel.Value
		}
	}

	*f = wireFields(p)
	return nil
}

// toIssue flattens the wire shape into the pipeline's Issue.
func (w wireIssue) toIssue() Issue {
	components := make([]string, 0, len(w.Fields.Components))
	for _, c := range w.Fields.Components {
		components = append(components, c.Name)
	}
	return Issue{
		ID:           w.ID,
		Key:          w.Key,
		Type:         w.Fields.IssueType.Name,
		Status:       w.Fields.Status.Name,
		Labels:       w.Fields.Labels,
		Components:   components,
		Summary:      w.Fields.Summary,
		CustomFields: w.Fields.custom,
	}
}
