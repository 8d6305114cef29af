package discord

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/fabricbot/fabricbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	deleteErr   error
	deleted     []string
	hooks       []*discordgo.Webhook
	listErr     error
	createdWith []string
}

func (s *fakeSession) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	s.deleted = append(s.deleted, channelID+"/"+messageID)
	return s.deleteErr
}

func (s *fakeSession) ChannelWebhooks(channelID string, options ...discordgo.RequestOption) ([]*discordgo.Webhook, error) {
	return s.hooks, s.listErr
}

func (s *fakeSession) WebhookCreate(channelID, name, avatar string, options ...discordgo.RequestOption) (*discordgo.Webhook, error) {
	s.createdWith = append(s.createdWith, avatar)
	return &discordgo.Webhook{ID: "w1", Name: name, ChannelID: channelID, Token: "tok"}, nil
}

func (s *fakeSession) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{ID: "m1", ChannelID: channelID, Content: content}, nil
}

func restError(status, code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status, Status: http.StatusText(status)},
		Message:  &discordgo.APIErrorMessage{Code: code, Message: "x"},
	}
}

func TestDeleteMessage_NotFound(t *testing.T) {
	s := &fakeSession{deleteErr: restError(http.StatusNotFound, discordgo.ErrCodeUnknownMessage)}
	c := NewClient(s)

	err := c.DeleteMessage(context.Background(), core.MessageHandle{ChannelID: "1", MessageID: "2"})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, []string{"1/2"}, s.deleted)
}

func TestDeleteMessage_OtherErrorsAreNotNotFound(t *testing.T) {
	for _, err := range []error{
		restError(http.StatusInternalServerError, 0),
		restError(http.StatusForbidden, discordgo.ErrCodeMissingPermissions),
		errors.New("connection reset"),
	} {
		c := NewClient(&fakeSession{deleteErr: err})
		got := c.DeleteMessage(context.Background(), core.MessageHandle{ChannelID: "1", MessageID: "2"})
		require.Error(t, got)
		assert.NotErrorIs(t, got, core.ErrNotFound)
		assert.ErrorIs(t, got, err)
	}
}

func TestDeleteMessage_Success(t *testing.T) {
	c := NewClient(&fakeSession{})
	assert.NoError(t, c.DeleteMessage(context.Background(), core.MessageHandle{ChannelID: "1", MessageID: "2"}))
}

func TestClassify_UnknownChannelCode(t *testing.T) {
	// Some endpoints answer 400 with an "unknown channel" body.
	err := classify(restError(http.StatusBadRequest, discordgo.ErrCodeUnknownChannel))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListHooks(t *testing.T) {
	s := &fakeSession{hooks: []*discordgo.Webhook{
		{ID: "a", Name: "Fabric Bot", ChannelID: "9"},
		{ID: "b", Name: "Other", ChannelID: "9"},
	}}
	hooks, err := NewClient(s).ListHooks(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, []core.HookRecord{
		{ID: "a", Name: "Fabric Bot", ChannelID: "9"},
		{ID: "b", Name: "Other", ChannelID: "9"},
	}, hooks)
}

func TestListHooks_Error(t *testing.T) {
	s := &fakeSession{listErr: restError(http.StatusForbidden, discordgo.ErrCodeMissingPermissions)}
	_, err := NewClient(s).ListHooks(context.Background(), "9")
	assert.ErrorContains(t, err, "list webhooks")
}

func TestCreateHook_SendsDataURI(t *testing.T) {
	s := &fakeSession{}
	png := []byte("\x89PNG\r\n\x1a\n0000")

	hook, err := NewClient(s).CreateHook(context.Background(), "9", "Fabric Bot", png)
	require.NoError(t, err)
	assert.Equal(t, "w1", hook.ID)
	assert.Equal(t, "tok", hook.Token)
	require.Len(t, s.createdWith, 1)
	assert.True(t, strings.HasPrefix(s.createdWith[0], "data:image/png;base64,"), s.createdWith[0])
}

func TestAvatarDataURI_Empty(t *testing.T) {
	assert.Equal(t, "", AvatarDataURI(nil))
}

func TestSendMessage(t *testing.T) {
	h, err := NewClient(&fakeSession{}).SendMessage(context.Background(), "9", "hi")
	require.NoError(t, err)
	assert.Equal(t, core.MessageHandle{ChannelID: "9", MessageID: "m1"}, h)
}

func TestToMessage(t *testing.T) {
	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "5",
		ChannelID: "9",
		Content:   "!uptime",
		Author:    &discordgo.User{ID: "7"},
		Member:    &discordgo.Member{Roles: []string{"r1", "r2"}},
	}}
	msg, ok := toMessage(m)
	require.True(t, ok)
	assert.Equal(t, "5", msg.ID)
	assert.Equal(t, "9", msg.ChannelID)
	assert.Equal(t, "7", msg.AuthorID)
	assert.Equal(t, ChannelName, msg.Channel)
	assert.Equal(t, []string{"r1", "r2"}, msg.RoleIDs)

	m.Author.Bot = true
	_, ok = toMessage(m)
	assert.False(t, ok)

	_, ok = toMessage(&discordgo.MessageCreate{Message: &discordgo.Message{ID: "1"}})
	assert.False(t, ok)
}
