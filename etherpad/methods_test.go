package etherpad

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bbb-pads/errors"
)

func TestValidate_KnownMethods(t *testing.T) {
	req := require.New(t)

	req.NoError(validate("createGroup", nil))
	req.NoError(validate("deleteGroup", Params{"groupID": "g.1"}))
	req.NoError(validate("listPads", Params{"groupID": "g.1"}))
	req.NoError(validate("createGroupPad", Params{"groupID": "g.1", "padName": "notes"}))
	req.NoError(validate("createGroupPad", Params{"groupID": "g.1", "padName": "notes", "text": "hello"}))
	req.NoError(validate("createAuthor", nil))
	req.NoError(validate("createAuthor", Params{"name": "alice"}))
	req.NoError(validate("createSession", Params{"groupID": "g.1", "authorID": "a.1", "validUntil": 123}))
	req.NoError(validate("deleteSession", Params{"sessionID": "s.1"}))
	req.NoError(validate("getHTML", Params{"padID": "g.1$notes", "rev": 7}))
	req.NoError(validate("appendText", Params{"padID": "g.1$notes", "text": "more"}))
	req.NoError(validate("checkToken", nil))
}

func TestValidate_UnknownMethod(t *testing.T) {
	req := require.New(t)

	err := validate("destroyEverything", nil)
	req.ErrorIs(err, errors.ErrValidation)
}

func TestValidate_MissingMandatoryParam(t *testing.T) {
	req := require.New(t)

	err := validate("deleteGroup", nil)
	req.ErrorIs(err, errors.ErrValidation)

	err = validate("createSession", Params{"groupID": "g.1", "authorID": "a.1"})
	req.ErrorIs(err, errors.ErrValidation)
}

func TestValidate_UnknownParam(t *testing.T) {
	req := require.New(t)

	err := validate("createGroup", Params{"groupID": "g.1"})
	req.ErrorIs(err, errors.ErrValidation)

	err = validate("deleteSession", Params{"sessionID": "s.1", "force": true})
	req.ErrorIs(err, errors.ErrValidation)
}

func TestFingerprint_StableParamsOrdered(t *testing.T) {
	req := require.New(t)

	first := fingerprint("createGroupPad", Params{"groupID": "g.1", "padName": "notes"})
	second := fingerprint("createGroupPad", Params{"padName": "notes", "groupID": "g.1"})

	// Map iteration order must not change call identity.
	req.Equal(first, second)
	req.Equal("createGroupPad&groupID=g.1&padName=notes", first)
}

func TestFingerprint_DynamicParamsExcluded(t *testing.T) {
	req := require.New(t)

	first := fingerprint("createSession", Params{"groupID": "g.1", "authorID": "a.1", "validUntil": 1})
	second := fingerprint("createSession", Params{"groupID": "g.1", "authorID": "a.1", "validUntil": 2})

	req.Equal(first, second)
	req.NotContains(first, "validUntil")
}

func TestFingerprint_ParamlessNeverCollides(t *testing.T) {
	req := require.New(t)

	first := fingerprint("createGroup", nil)
	time.Sleep(time.Microsecond)
	second := fingerprint("createGroup", nil)

	req.True(strings.HasPrefix(first, "createGroup&timestamp="))
	req.NotEqual(first, second)
}
