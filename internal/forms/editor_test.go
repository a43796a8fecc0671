package forms

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rep-admin/internal/dto"
	"rep-admin/internal/entities"
	"rep-admin/pkg/customvalidator"
	apperrors "rep-admin/pkg/errors"
)

func newTestEditor(t *testing.T, kind entities.Kind, fetched string) *Editor {
	t.Helper()
	def, ok := Lookup(kind)
	require.True(t, ok)
	cv, err := customvalidator.New()
	require.NoError(t, err)

	editor := NewEditor(def, &State{}, cv)
	if fetched != "" {
		require.NoError(t, editor.Load(json.RawMessage(fetched)))
	}
	return editor
}

func decodeMap(t *testing.T, raw json.RawMessage) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEditor_LoadMergesOverDefaults(t *testing.T) {
	editor := newTestEditor(t, entities.KindEmailSettings, `{"birthday": true, "birthday_status": null, "easter_recipient": "parents"}`)

	data := decodeMap(t, editor.Display())

	assert.Equal(t, true, data["birthday"])
	assert.Equal(t, "send", data["birthday_status"])
	assert.Equal(t, "both", data["birthday_recipient"])
	assert.Equal(t, "parent", data["easter_recipient"])
	assert.Equal(t, "long_version", data["contacts_newsletter_version"])
	assert.Equal(t, "monthly", data["parents_newsletter_frequency"])
}

func TestEditor_BeginEditRefusedWithoutData(t *testing.T) {
	editor := newTestEditor(t, entities.KindSocials, "")
	assert.ErrorIs(t, editor.BeginEdit(), apperrors.ErrCardNotLoaded)

	require.NoError(t, editor.Load(nil))
	assert.ErrorIs(t, editor.BeginEdit(), apperrors.ErrCardNotLoaded)
}

func TestEditor_CancelRestoresFetched(t *testing.T) {
	kinds := map[entities.Kind]struct {
		fetched string
		patch   string
	}{
		entities.KindSocials:       {`{"facebook": "https://facebook.com/rep"}`, `{"facebook": "https://facebook.com/other", "yelp": "https://yelp.com/x"}`},
		entities.KindAccount:       {`{"name": "Jane", "no_rate_plan": true}`, `{"name": "John", "password": "supersecret"}`},
		entities.KindCompliance:    {`{"bbb": true, "industry": 3}`, `{"bbb": false, "disclosure": "new"}`},
		entities.KindCallToAction:  {`{"label_1": "Call me"}`, `{"label_1": "Email me", "url_1": "https://x.io"}`},
		entities.KindServices:      {`{"email": true, "email_charge": "10.00"}`, `{"email": false}`},
		entities.KindEmailSettings: {`{"birthday": true}`, `{"birthday": false, "birthday_status": "dont_send"}`},
		entities.KindBranding:      {`{"personal_bio": "Bio", "logo_width": 120}`, `{"personal_bio": "", "logo_width": 300}`},
		entities.KindPersonal:      {`{"id": 7, "rep_id": "R7", "first_name": "Jane", "cellphone": "8583695555"}`, `{"first_name": "Janet", "cellphone": "+18583695555"}`},
	}

	for kind, tc := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			editor := newTestEditor(t, kind, tc.fetched)
			before := append(json.RawMessage(nil), editor.Display()...)

			require.NoError(t, editor.BeginEdit())
			require.NoError(t, editor.Apply(json.RawMessage(tc.patch)))
			assert.NotEqual(t, string(before), string(editor.Display()))

			editor.Cancel()

			assert.False(t, editor.State().Editing)
			assert.JSONEq(t, string(before), string(editor.Display()))
		})
	}
}

func TestEditor_ApplyIgnoresReadOnlyAndRejectsUnknown(t *testing.T) {
	editor := newTestEditor(t, entities.KindPersonal, `{"id": 7, "rep_id": "R7", "first_name": "Jane"}`)
	require.NoError(t, editor.BeginEdit())

	require.NoError(t, editor.Apply(json.RawMessage(`{"rep_id": "HACK", "photo": "x"}`)))
	data := decodeMap(t, editor.Display())
	assert.Equal(t, "R7", data["rep_id"])

	err := editor.Apply(json.RawMessage(`{"favourite_color": "red"}`))
	assert.ErrorIs(t, err, apperrors.ErrUnknownField)
}

func TestEditor_ApplyRequiresEditMode(t *testing.T) {
	editor := newTestEditor(t, entities.KindSocials, `{}`)
	assert.ErrorIs(t, editor.Apply(json.RawMessage(`{"facebook": ""}`)), apperrors.ErrCardNotEditing)
}

func TestEditor_ServiceToggleZeroesInSameUpdate(t *testing.T) {
	editor := newTestEditor(t, entities.KindServices, `{"send_post": true, "send_post_charge": "12.50", "send_post_royalty": "1.25"}`)
	require.NoError(t, editor.BeginEdit())

	require.NoError(t, editor.Apply(json.RawMessage(`{"send_post": false}`)))

	data := decodeMap(t, editor.Display())
	assert.Equal(t, "0", data["send_post_charge"])
	assert.Equal(t, "0", data["send_post_royalty"])
}

func TestEditor_SelectAll(t *testing.T) {
	editor := newTestEditor(t, entities.KindEmailSettings, `{"christmas_status": "dont_send"}`)
	require.NoError(t, editor.BeginEdit())

	require.NoError(t, editor.SetAll(true))

	data := decodeMap(t, editor.Display())
	for _, occasion := range []string{"birthday", "spouse_birthday", "new_year", "christmas", "thanksgiving"} {
		assert.Equal(t, true, data[occasion], occasion)
		assert.Equal(t, "send", data[occasion+"_status"], occasion)
		assert.Equal(t, "both", data[occasion+"_recipient"], occasion)
	}
	assert.Equal(t, "long_version", data["parents_newsletter_version"])
	assert.Equal(t, "monthly", data["contacts_newsletter_frequency"])

	socials := newTestEditor(t, entities.KindSocials, `{}`)
	require.NoError(t, socials.BeginEdit())
	assert.ErrorIs(t, socials.SetAll(true), apperrors.ErrUnknownField)
}

func TestEditor_ClientValidationBlocksSubmit(t *testing.T) {
	editor := newTestEditor(t, entities.KindPersonal, `{"first_name": "Jane", "last_name": "Doe", "email": "jane@example.com"}`)
	require.NoError(t, editor.BeginEdit())
	require.NoError(t, editor.Apply(json.RawMessage(`{"cellphone": "858-369-5555", "first_name": ""}`)))

	called := false
	_, err := editor.Submit(context.Background(), func(ctx context.Context, payload dto.Payload) error {
		called = true
		return nil
	})

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, apperrors.SourceClient, validationErr.Source)
	assert.False(t, called, "при ошибке валидации запрос не отправляется")
	assert.True(t, editor.State().Editing)
	assert.False(t, editor.State().Submitting)
	assert.Equal(t, "Enter a valid phone number.", editor.State().FieldErrors["cellphone"])
	assert.Equal(t, "This field is required.", editor.State().FieldErrors["first_name"])
}

func TestEditor_SubmitShapesPayload(t *testing.T) {
	editor := newTestEditor(t, entities.KindPersonal, `{"id": 7, "rep_id": "R7", "first_name": "Jane", "last_name": "Doe", "email": "jane@example.com", "cellphone": "8583695555", "photo": "https://cdn/photo.png"}`)
	require.NoError(t, editor.BeginEdit())
	require.NoError(t, editor.Apply(json.RawMessage(`{"work_phone": "+16195550100", "work_phone_ext": "12"}`)))

	var sent dto.Payload
	released, err := editor.Submit(context.Background(), func(ctx context.Context, payload dto.Payload) error {
		sent = payload
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, released)

	assert.Equal(t, "8583695555", sent.Fields["cellphone"])
	assert.Equal(t, "+16195550100", sent.Fields["work_phone"])
	assert.NotContains(t, sent.Fields, "id")
	assert.NotContains(t, sent.Fields, "rep_id")
	assert.NotContains(t, sent.Fields, "photo", "файл без нового выбора не отправляется")
	assert.NotContains(t, sent.Fields, "work_phone_display")
	assert.False(t, sent.IsMultipart())
	assert.False(t, editor.State().Editing)
}

func TestEditor_ClearedValueIsSentAsNull(t *testing.T) {
	editor := newTestEditor(t, entities.KindBranding, `{"personal_bio": "Bio", "logo_width": 300, "photo_width": null}`)
	require.NoError(t, editor.BeginEdit())
	require.NoError(t, editor.Apply(json.RawMessage(`{"logo_width": null}`)))

	var sent dto.Payload
	_, err := editor.Submit(context.Background(), func(ctx context.Context, payload dto.Payload) error {
		sent = payload
		return nil
	})
	require.NoError(t, err)

	require.Contains(t, sent.Fields, "logo_width")
	assert.Nil(t, sent.Fields["logo_width"])
	assert.NotContains(t, sent.Fields, "photo_width", "поле и так было пустым")
	assert.NotContains(t, sent.Fields, "logo_height")
	assert.Equal(t, "Bio", sent.Fields["personal_bio"])
}

func TestEditor_SubmitWithFileIsMultipart(t *testing.T) {
	editor := newTestEditor(t, entities.KindBranding, `{"personal_bio": "Bio", "logo": "https://cdn/logo.png"}`)
	require.NoError(t, editor.BeginEdit())

	first := FileRef{Handle: "h1", Path: "previews/logo/a.png", FileName: "a.png"}
	second := FileRef{Handle: "h2", Path: "previews/logo/b.png", FileName: "b.png"}
	superseded, err := editor.AttachFile("logo", first)
	require.NoError(t, err)
	assert.Nil(t, superseded)
	superseded, err = editor.AttachFile("logo", second)
	require.NoError(t, err)
	require.NotNil(t, superseded)
	assert.Equal(t, "h1", superseded.Handle)

	var sent dto.Payload
	released, err := editor.Submit(context.Background(), func(ctx context.Context, payload dto.Payload) error {
		sent = payload
		return nil
	})
	require.NoError(t, err)

	assert.True(t, sent.IsMultipart())
	require.Len(t, sent.Files, 1)
	assert.Equal(t, "logo", sent.Files[0].Field)
	assert.Equal(t, "previews/logo/b.png", sent.Files[0].Path)
	assert.NotContains(t, sent.Fields, "company_logo")
	assert.NotContains(t, sent.Fields, "logo_width", "null не отправляется")
	assert.Equal(t, []FileRef{second}, released)
}

func TestEditor_BlankPasswordOmitted(t *testing.T) {
	editor := newTestEditor(t, entities.KindAccount, `{"name": "Jane", "password": "hash-from-server"}`)
	assert.Equal(t, "", decodeMap(t, editor.Display())["password"])
	require.NoError(t, editor.BeginEdit())

	var sent dto.Payload
	_, err := editor.Submit(context.Background(), func(ctx context.Context, payload dto.Payload) error {
		sent = payload
		return nil
	})
	require.NoError(t, err)
	assert.NotContains(t, sent.Fields, "password")

	require.NoError(t, editor.BeginEdit())
	require.NoError(t, editor.Apply(json.RawMessage(`{"password": "short"}`)))
	_, err = editor.Submit(context.Background(), func(ctx context.Context, payload dto.Payload) error { return nil })
	assert.Error(t, err)
	assert.Equal(t, "Ensure this field has at least 8 characters.", editor.State().FieldErrors["password"])
}

func TestEditor_ServerFieldErrorsKeepEditMode(t *testing.T) {
	editor := newTestEditor(t, entities.KindSocials, `{"facebook": "https://facebook.com/rep"}`)
	require.NoError(t, editor.BeginEdit())

	serverErr := apperrors.NewServerValidationError(apperrors.FieldErrors{
		"facebook": {"Profile does not exist.", "Second message."},
	})
	_, err := editor.Submit(context.Background(), func(ctx context.Context, payload dto.Payload) error {
		return serverErr
	})

	assert.ErrorIs(t, err, serverErr)
	assert.True(t, editor.State().Editing)
	assert.False(t, editor.State().Submitting)
	assert.Equal(t, map[string]string{"facebook": "Profile does not exist."}, editor.State().FieldErrors)
}

func TestEditor_GenericFailureKeepsEditModeWithoutFieldErrors(t *testing.T) {
	editor := newTestEditor(t, entities.KindSocials, `{}`)
	require.NoError(t, editor.BeginEdit())

	_, err := editor.Submit(context.Background(), func(ctx context.Context, payload dto.Payload) error {
		return errors.New("boom")
	})

	assert.Error(t, err)
	assert.True(t, editor.State().Editing)
	assert.False(t, editor.State().Submitting)
	assert.Empty(t, editor.State().FieldErrors)
}

func TestEditor_SecondPrepareWhileSubmitting(t *testing.T) {
	editor := newTestEditor(t, entities.KindSocials, `{}`)
	require.NoError(t, editor.BeginEdit())

	_, err := editor.Prepare()
	require.NoError(t, err)

	_, err = editor.Prepare()
	assert.ErrorIs(t, err, apperrors.ErrActionInProgress)
}

func TestEditor_LoadWhileEditingKeepsDraft(t *testing.T) {
	editor := newTestEditor(t, entities.KindCallToAction, `{"label_1": "One"}`)
	require.NoError(t, editor.BeginEdit())
	require.NoError(t, editor.Apply(json.RawMessage(`{"label_1": "Draft"}`)))

	require.NoError(t, editor.Load(json.RawMessage(`{"label_1": "Server"}`)))

	assert.Equal(t, "Draft", decodeMap(t, editor.Display())["label_1"])
	editor.Cancel()
	assert.Equal(t, "Server", decodeMap(t, editor.Display())["label_1"])
}
