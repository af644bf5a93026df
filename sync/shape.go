package sync

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// RecordShape projects a raw API record onto the emitted record. Keys are
// emitted field names, values are gjson paths into the raw record. Paths
// may carry modifiers, e.g. "description|@plainText".
type RecordShape struct {
	Strings  map[string]string
	Integers map[string]string
	Booleans map[string]string
	// Raw fields (nested objects and arrays) are copied verbatim.
	Raw map[string]string
}

// Shape builds the emitted record JSON for one raw record. Fields whose
// path does not resolve are omitted rather than emitted as null.
func (s RecordShape) Shape(raw gjson.Result) (string, error) {
	record := "{}"
	set := func(field string, value interface{}) (err error) {
		record, err = sjson.Set(record, field, value)
		if err != nil {
			err = fmt.Errorf("failed to shape field %s %w", field, err)
		}
		return err
	}
	for field, path := range s.Strings {
		if res := raw.Get(path); res.Exists() && res.Value() != nil {
			if err := set(field, res.String()); err != nil {
				return "", err
			}
		}
	}
	for field, path := range s.Integers {
		if res := raw.Get(path); res.Exists() && res.Value() != nil {
			if err := set(field, res.Int()); err != nil {
				return "", err
			}
		}
	}
	for field, path := range s.Booleans {
		if res := raw.Get(path); res.Exists() && res.Value() != nil {
			if err := set(field, res.Bool()); err != nil {
				return "", err
			}
		}
	}
	for field, path := range s.Raw {
		res := raw.Get(path)
		if !res.Exists() || res.Value() == nil {
			continue
		}
		var err error
		record, err = sjson.SetRaw(record, field, res.Raw)
		if err != nil {
			return "", fmt.Errorf("failed to shape field %s %w", field, err)
		}
	}
	return record, nil
}

func ticketShape() RecordShape {
	return RecordShape{
		Strings: map[string]string{
			"title":     "title",
			"createdOn": "createdOn",
			"updatedOn": "updatedOn",
		},
		Integers: map[string]string{
			"ticketId":         "ticketId",
			"slaBreachedCount": "slaBreachedCount",
			"slaAchievedCount": "slaAchievedCount",
		},
		Raw: map[string]string{
			"cf_issue_type": "cf_issue_type",
			"group":         "group",
			"status":        "status",
			"priority":      "priority",
			"category":      "category",
			"contactGroup":  "contactGroup",
		},
	}
}

func messageShape() RecordShape {
	return RecordShape{
		Strings: map[string]string{
			"description":          "description",
			"descriptionText":      "description|@plainText",
			"createdOn":            "createdOn",
			"updatedOn":            "updatedOn",
			"source":               "source",
			"updateFlagName":       "updateFlagName",
			"modifiedEmailSubject": "modifiedEmailSubject",
			"chatConversationId":   "chatConversationId",
		},
		Integers: map[string]string{
			"id":            "id",
			"ticketId":      "ticketId",
			"updateFlagId":  "updateFlagId",
			"messageTypeId": "messageTypeId",
			"sourceId":      "sourceId",
			"activityCount": "activityCount",
		},
		Booleans: map[string]string{
			"hasAttachment":            "hasAttachment",
			"isUpdatedByCustomer":      "isUpdatedByCustomer",
			"isFirstUpdate":            "isFirstUpdate",
			"isAnyEmailDeliveryFailed": "isAnyEmailDeliveryFailed",
			"skipEmailNotification":    "skipEmailNotification",
		},
		Raw: map[string]string{
			"updatedBy":           "updatedBy",
			"modifiedOrDeletedBy": "modifiedOrDeletedBy",
			"attachments":         "attachments",
			"messageTag":          "messageTag",
			"additionalDetails":   "additionalDetails",
		},
	}
}
