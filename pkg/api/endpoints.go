package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/hazyhaar/rolodex/pkg/contacts"
	"github.com/hazyhaar/rolodex/pkg/kit"
	"github.com/hazyhaar/rolodex/pkg/lookupkey"
)

// Shared request/response types used by both HTTP and MCP transports.

type contactSummary struct {
	ID             int64  `json:"id"`
	AggregateID    int64  `json:"aggregate_id"`
	DisplayName    string `json:"display_name"`
	DisplayNameAlt string `json:"display_name_alt,omitempty"`
	SortKey        string `json:"sort_key,omitempty"`
	BucketLabel    string `json:"bucket_label,omitempty"`
}

type searchResponse struct {
	Contacts []contactSummary `json:"contacts"`
}

type resolveResponse struct {
	AggregateID int64         `json:"aggregate_id"`
	Segments    []segmentInfo `json:"segments"`
}

type segmentInfo struct {
	Type        string `json:"type"`
	AccountHash uint16 `json:"account_hash,omitempty"`
	Key         string `json:"key,omitempty"`
	ResolvedID  int64  `json:"resolved_id"`
}

type searchReq struct {
	Prefix string
	Types  []contacts.NameType
}

type phoneReq struct {
	Number string
	E164   string
	Strict bool
}

type resolveReq struct {
	Key string
}

// Endpoints return the core kit.Endpoints backed by the store.

func searchEndpoint(store *contacts.Store) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*searchReq)
		if strings.TrimSpace(req.Prefix) == "" {
			return nil, fmt.Errorf("query is empty")
		}
		ids, err := store.SearchByName(req.Prefix, req.Types)
		if err != nil {
			return nil, err
		}
		return summarize(store, ids)
	}
}

func phoneEndpoint(store *contacts.Store) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*phoneReq)
		ids, err := store.LookupByPhone(req.Number, req.E164, req.Strict)
		if err != nil {
			return nil, err
		}
		return summarize(store, ids)
	}
}

func resolveKeyEndpoint(store *contacts.Store) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*resolveReq)
		agg, segs, err := store.ResolveKey(req.Key)
		if err != nil {
			return nil, err
		}
		resp := resolveResponse{AggregateID: agg}
		for _, seg := range segs {
			resp.Segments = append(resp.Segments, segmentInfo{
				Type:        segmentTypeName(seg.Type),
				AccountHash: seg.AccountHash,
				Key:         seg.Key,
				ResolvedID:  seg.ResolvedID,
			})
		}
		return resp, nil
	}
}

func summarize(store *contacts.Store, ids []int64) (searchResponse, error) {
	resp := searchResponse{Contacts: []contactSummary{}}
	for _, id := range ids {
		rc, err := store.RawContact(id)
		if err != nil {
			return resp, err
		}
		resp.Contacts = append(resp.Contacts, contactSummary{
			ID:             rc.ID,
			AggregateID:    rc.AggregateID,
			DisplayName:    rc.DisplayName,
			DisplayNameAlt: rc.DisplayNameAlt,
			SortKey:        rc.SortKey,
			BucketLabel:    rc.BucketLabel,
		})
	}
	return resp, nil
}

func segmentTypeName(t lookupkey.SegmentType) string {
	switch t {
	case lookupkey.SegmentSourceID:
		return "source_id"
	case lookupkey.SegmentDisplayName:
		return "display_name"
	case lookupkey.SegmentRawContactID:
		return "raw_contact_id"
	case lookupkey.SegmentProfile:
		return "profile"
	}
	return "unknown"
}

// parseNameTypes maps a comma-separated filter to index entry types.
// An empty filter searches every type.
func parseNameTypes(s string) ([]contacts.NameType, error) {
	if s == "" {
		return []contacts.NameType{
			contacts.NameExact, contacts.NameVariant, contacts.NameCollation,
			contacts.NamePhonetic, contacts.NameNickname, contacts.NameEmailLocal,
		}, nil
	}
	var types []contacts.NameType
	for _, part := range strings.Split(s, ",") {
		switch strings.TrimSpace(part) {
		case "exact":
			types = append(types, contacts.NameExact)
		case "variant":
			types = append(types, contacts.NameVariant)
		case "collation":
			types = append(types, contacts.NameCollation)
		case "phonetic":
			types = append(types, contacts.NamePhonetic)
		case "nickname":
			types = append(types, contacts.NameNickname)
		case "email":
			types = append(types, contacts.NameEmailLocal)
		default:
			return nil, fmt.Errorf("unknown name type %q", strings.TrimSpace(part))
		}
	}
	return types, nil
}

// parseDataKind maps the wire name of an attribute kind.
func parseDataKind(s string) (contacts.DataKind, error) {
	switch s {
	case "structured_name":
		return contacts.KindStructuredName, nil
	case "nickname":
		return contacts.KindNickname, nil
	case "organization":
		return contacts.KindOrganization, nil
	case "phone":
		return contacts.KindPhone, nil
	case "email":
		return contacts.KindEmail, nil
	case "im":
		return contacts.KindIM, nil
	}
	return 0, fmt.Errorf("unknown data kind %q", s)
}
