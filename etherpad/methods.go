package etherpad

import (
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/samber/lo"

	"bbb-pads/errors"
)

const (
	authorID      = "authorID"
	groupID       = "groupID"
	padID         = "padID"
	sessionID     = "sessionID"
	sourceID      = "sourceID"
	destinationID = "destinationID"
	readOnlyID    = "readOnlyID"

	authorName = "name"
	padName    = "padName"

	html  = "html"
	rev   = "rev"
	text  = "text"
	force = "force"

	validUntil   = "validUntil"
	startRev     = "startRev"
	endRev       = "endRev"
	publicStatus = "publicStatus"
)

// dynamicParams vary on every call without changing call identity, so they
// are excluded from the in-flight fingerprint.
var dynamicParams = []string{validUntil}

type params struct {
	mandatory []string
	optional  []string
}

// methods is the registry of remote operations and their parameter contracts.
// Calls are validated structurally against it before any network I/O.
var methods = map[string]params{
	"createGroup":            {},
	"deleteGroup":            {mandatory: []string{groupID}},
	"listPads":               {mandatory: []string{groupID}},
	"createGroupPad":         {mandatory: []string{groupID, padName}, optional: []string{text}},
	"listAllGroups":          {},
	"createAuthor":           {optional: []string{authorName}},
	"listPadsOfAuthor":       {mandatory: []string{authorID}},
	"getAuthorName":          {mandatory: []string{authorID}},
	"createSession":          {mandatory: []string{groupID, authorID, validUntil}},
	"deleteSession":          {mandatory: []string{sessionID}},
	"getSessionInfo":         {mandatory: []string{sessionID}},
	"listSessionsOfGroup":    {mandatory: []string{groupID}},
	"listSessionsOfAuthor":   {mandatory: []string{authorID}},
	"getText":                {mandatory: []string{padID}, optional: []string{rev}},
	"setText":                {mandatory: []string{padID, text}},
	"appendText":             {mandatory: []string{padID, text}},
	"getHTML":                {mandatory: []string{padID}, optional: []string{rev}},
	"setHTML":                {mandatory: []string{padID, html}},
	"getAttributePool":       {mandatory: []string{padID}},
	"getRevisionChangeset":   {mandatory: []string{padID}, optional: []string{rev}},
	"createDiffHTML":         {mandatory: []string{padID, startRev, endRev}},
	"restoreRevision":        {mandatory: []string{padID, rev}},
	"createPad":              {mandatory: []string{padID}, optional: []string{text}},
	"getRevisionsCount":      {mandatory: []string{padID}},
	"getSavedRevisionsCount": {mandatory: []string{padID}},
	"listSavedRevisions":     {mandatory: []string{padID}},
	"saveRevision":           {mandatory: []string{padID}, optional: []string{rev}},
	"padUsersCount":          {mandatory: []string{padID}},
	"padUsers":               {mandatory: []string{padID}},
	"deletePad":              {mandatory: []string{padID}},
	"copyPad":                {mandatory: []string{sourceID, destinationID}, optional: []string{force}},
	"copyPadWithoutHistory":  {mandatory: []string{sourceID, destinationID}, optional: []string{force}},
	"movePad":                {mandatory: []string{sourceID, destinationID}, optional: []string{force}},
	"getReadOnlyID":          {mandatory: []string{padID}},
	"getPadID":               {mandatory: []string{readOnlyID}},
	"setPublicStatus":        {mandatory: []string{padID, publicStatus}},
	"getPublicStatus":        {mandatory: []string{padID}},
	"listAuthorsOfPad":       {mandatory: []string{padID}},
	"getLastEdited":          {mandatory: []string{padID}},
	"checkToken":             {},
	"listAllPads":            {},
	"getStats":               {},
}

// validate checks the method name and the shape of its parameters against the
// registry. It runs before any network I/O, so a rejected call has no remote
// effect.
func validate(method string, values Params) error {
	contract, ok := methods[method]
	if !ok {
		return fmt.Errorf("%w: unknown method %q", errors.ErrValidation, method)
	}

	for _, param := range contract.mandatory {
		if _, ok := values[param]; !ok {
			return fmt.Errorf("%w: %s misses mandatory param %q", errors.ErrValidation, method, param)
		}
	}

	allowed := append(contract.mandatory, contract.optional...)
	for param := range values {
		if !lo.Contains(allowed, param) {
			return fmt.Errorf("%w: %s does not accept param %q", errors.ErrValidation, method, param)
		}
	}

	return nil
}

// fingerprint builds the in-flight identity of a call: the method name plus
// its stable parameter values. Paramless calls get a monotonic timestamp so
// they are never treated as duplicates of each other.
func fingerprint(method string, values Params) string {
	keys := lo.Filter(lo.Keys(values), func(key string, _ int) bool {
		return !lo.Contains(dynamicParams, key)
	})

	id := method
	if len(keys) == 0 {
		return fmt.Sprintf("%s&timestamp=%d", id, time.Now().UnixNano())
	}

	sort.Strings(keys)
	for _, key := range keys {
		id += fmt.Sprintf("&%s=%s", key, url.QueryEscape(fmt.Sprint(values[key])))
	}

	return id
}
