package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/bluesky-social/hallmonitor/automod/consumer"
	"github.com/bluesky-social/hallmonitor/automod/keyword"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestParseSnowflake(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		val      string
		required bool
		out      string
		err      bool
	}{
		{val: "123456789012345678", required: true, out: "123456789012345678"},
		{val: "0042", required: true, out: "42"},
		{val: "", required: true, err: true},
		{val: "0", required: true, err: true},
		{val: "abc", required: true, err: true},
		{val: "-5", required: true, err: true},
		{val: "", required: false, out: ""},
		{val: "0", required: false, out: ""},
		{val: "abc", required: false, err: true},
	}
	for _, f := range fixtures {
		out, err := parseSnowflake("guild-id", f.val, f.required)
		if f.err {
			assert.Error(err, f.val)
			continue
		}
		assert.NoError(err, f.val)
		assert.Equal(f.out, out, f.val)
	}
}

func TestCheckLines(t *testing.T) {
	assert := assert.New(t)

	bw := keyword.ParseBannedWords("badword, heck")
	var out bytes.Buffer
	in := strings.NewReader("hello there\nwhat the HECK\nnothing badwordy here\n")
	assert.NoError(checkLines(in, &out, bw))
	assert.Equal("ok\t-\thello there\nBANNED\theck\twhat the HECK\nBANNED\tbadword\tnothing badwordy here\n", out.String())
}

func TestPrintStrikes(t *testing.T) {
	assert := assert.New(t)

	var out bytes.Buffer
	printStrikes(&out, map[string]int{"333": 1, "111": 2, "222": 2})
	assert.Equal("111\t2\n222\t2\n333\t1\n", out.String())

	out.Reset()
	printStrikes(&out, map[string]int{})
	assert.Equal("", out.String())
}

func TestServerHealthy(t *testing.T) {
	assert := assert.New(t)

	srv := &Server{}
	assert.Error(srv.Healthy())

	srv.consumer = &consumer.DiscordConsumer{Logger: slog.Default()}
	assert.Error(srv.Healthy())

	srv.consumer.HandleReady(nil, &discordgo.Ready{})
	assert.NoError(srv.Healthy())

	srv.consumer.HandleDisconnect(nil, &discordgo.Disconnect{})
	assert.Error(srv.Healthy())
}
