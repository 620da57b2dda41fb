// Command stanzadump decodes a captured message stanza and prints its
// classified envelope as JSON. It performs no decryption; it is a
// debugging aid for inspecting how a stanza's addressing resolves.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	waBinary "go.mau.fi/whatsmeow/binary"
	"go.mau.fi/whatsmeow/types"

	"waingest/pkg/stanza"
)

var (
	stanzaPath = flag.String("file", "", "Path to a file holding one marshaled binary stanza")
	ownJID     = flag.String("me", "", "Own JID, e.g. 1234567890@s.whatsapp.net")
	ownLID     = flag.String("lid", "", "Own LID, if assigned")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		logrus.Fatalf("stanzadump: %v", err)
	}
}

func run() error {
	if *stanzaPath == "" || *ownJID == "" {
		flag.Usage()
		return fmt.Errorf("both -file and -me are required")
	}

	data, err := os.ReadFile(*stanzaPath)
	if err != nil {
		return fmt.Errorf("failed to read stanza file: %w", err)
	}

	node, err := waBinary.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("failed to unmarshal stanza: %w", err)
	}

	me, err := types.ParseJID(*ownJID)
	if err != nil {
		return fmt.Errorf("invalid own JID: %w", err)
	}
	var lid types.JID
	if *ownLID != "" {
		lid, err = types.ParseJID(*ownLID)
		if err != nil {
			return fmt.Errorf("invalid own LID: %w", err)
		}
	}

	cm, err := stanza.Classify(node, me, lid)
	if err != nil {
		return fmt.Errorf("classification failed (nack %d): %w", stanza.NackReasonFor(err), err)
	}

	out := struct {
		Type     stanza.MessageType      `json:"type"`
		Author   string                  `json:"author"`
		Sender   string                  `json:"sender"`
		Category string                  `json:"category,omitempty"`
		Envelope *stanza.MessageEnvelope `json:"envelope"`
	}{
		Type:     cm.Type,
		Author:   cm.Author.String(),
		Sender:   cm.Sender.String(),
		Category: cm.Category,
		Envelope: cm.Envelope,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
