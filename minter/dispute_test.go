package minter

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/minters-xyz/go-minters/service/persist"
	"github.com/minters-xyz/go-minters/service/story"
	"github.com/stretchr/testify/assert"
)

func validDisputeInput() map[string]any {
	return map[string]any{
		"targetIpId":     "0xtarget",
		"targetTag":      "IMPROPER_REGISTRATION",
		"evidence":       "stolen artwork",
		"walletAddress":  "0x2222222222222222222222222222222222222222",
		"creatorAddress": "0x1111111111111111111111111111111111111111",
	}
}

func disputeOwner() persist.User {
	return persist.User{
		ID:            "owner-1",
		Email:         "owner@example.com",
		WalletAddress: "0x1111111111111111111111111111111111111111",
		RegisteredIPs: []persist.RegisteredIP{{IPID: "0xtarget"}},
	}
}

func TestRaiseDispute(t *testing.T) {
	t.Run("missing required fields", func(t *testing.T) {
		handler := raiseDispute(newFakeUserRepo(), &fakeDisputeRepo{}, newFakeUploader(), fakeStoryF(&fakeRegistrar{}), &fakeSender{})

		w := doJSON(handler, http.MethodPost, "/dispute", map[string]any{"targetIpId": "0xtarget"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed creator address", func(t *testing.T) {
		handler := raiseDispute(newFakeUserRepo(), &fakeDisputeRepo{}, newFakeUploader(), fakeStoryF(&fakeRegistrar{}), &fakeSender{})

		input := validDisputeInput()
		input["creatorAddress"] = "0xnothex"

		w := doJSON(handler, http.MethodPost, "/dispute", input)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("successful dispute records and notifies", func(t *testing.T) {
		assert := assert.New(t)

		userRepo := newFakeUserRepo(disputeOwner())
		disputeRepo := &fakeDisputeRepo{}
		sender := &fakeSender{configured: true}
		upld := newFakeUploader()
		reg := &fakeRegistrar{disputeResult: story.DisputeResult{DisputeID: "9", TxHash: "0xtx"}}

		handler := raiseDispute(userRepo, disputeRepo, upld, fakeStoryF(reg), sender)

		w := doJSON(handler, http.MethodPost, "/dispute", validDisputeInput())

		assert.Equal(http.StatusOK, w.Code)
		out := decodeBody[raiseDisputeOutput](t, w)
		assert.True(out.Success)
		assert.Equal("9", out.DisputeID)
		assert.Equal("0xtx", out.TxHash)
		assert.Equal("QmFake1", out.EvidenceCID)

		if assert.Len(disputeRepo.created, 1) {
			d := disputeRepo.created[0]
			assert.Equal(persist.DisputeStatusRaised, d.Status)
			assert.Equal("0xtarget", d.TargetIPID)
			assert.Equal(persist.Address("0x1111111111111111111111111111111111111111"), d.CreatorAddress)
		}

		if assert.Len(sender.notifications, 1) {
			assert.Equal("9", sender.notifications[0].DisputeID)
		}
	})

	t.Run("evidence document shape", func(t *testing.T) {
		assert := assert.New(t)

		upld := newFakeUploader()
		reg := &fakeRegistrar{disputeResult: story.DisputeResult{DisputeID: "9", TxHash: "0xtx"}}
		handler := raiseDispute(newFakeUserRepo(), &fakeDisputeRepo{}, upld, fakeStoryF(reg), &fakeSender{})

		w := doJSON(handler, http.MethodPost, "/dispute", validDisputeInput())
		assert.Equal(http.StatusOK, w.Code)

		doc := upld.uploads["dispute_evidence_0xtarget.json"]
		assert.NotNil(doc)

		var evidence map[string]any
		assert.NoError(json.Unmarshal(doc, &evidence))
		assert.Equal("Dispute Evidence", evidence["title"])
		assert.Equal("stolen artwork", evidence["description"])
		assert.Equal("0xtarget", evidence["targetIpId"])
		assert.Equal("IMPROPER_REGISTRATION", evidence["targetTag"])
		assert.NotEmpty(evidence["createdAt"])
		assert.Equal(float64(2592000), evidence["liveness"])
		assert.Equal("0.1 IP", evidence["bond"])
		assert.Equal("Pending", evidence["counterEvidence"])
		assert.Equal("No", evidence["appealed"])
	})

	t.Run("on-chain failure fails the request", func(t *testing.T) {
		assert := assert.New(t)

		disputeRepo := &fakeDisputeRepo{}
		sender := &fakeSender{configured: true}
		reg := &fakeRegistrar{disputeErr: errBoom}
		handler := raiseDispute(newFakeUserRepo(disputeOwner()), disputeRepo, newFakeUploader(), fakeStoryF(reg), sender)

		w := doJSON(handler, http.MethodPost, "/dispute", validDisputeInput())

		assert.Equal(http.StatusInternalServerError, w.Code)
		assert.Empty(disputeRepo.created)
		assert.Empty(sender.notifications)
	})

	t.Run("persistence failure does not fail the dispute", func(t *testing.T) {
		assert := assert.New(t)

		disputeRepo := &fakeDisputeRepo{err: errBoom}
		sender := &fakeSender{configured: true}
		reg := &fakeRegistrar{disputeResult: story.DisputeResult{DisputeID: "9", TxHash: "0xtx"}}
		handler := raiseDispute(newFakeUserRepo(disputeOwner()), disputeRepo, newFakeUploader(), fakeStoryF(reg), sender)

		w := doJSON(handler, http.MethodPost, "/dispute", validDisputeInput())

		assert.Equal(http.StatusOK, w.Code)
		assert.Len(sender.notifications, 1)
	})

	t.Run("no creator address means no notification", func(t *testing.T) {
		assert := assert.New(t)

		sender := &fakeSender{configured: true}
		reg := &fakeRegistrar{disputeResult: story.DisputeResult{DisputeID: "9", TxHash: "0xtx"}}
		handler := raiseDispute(newFakeUserRepo(disputeOwner()), &fakeDisputeRepo{}, newFakeUploader(), fakeStoryF(reg), sender)

		input := validDisputeInput()
		delete(input, "creatorAddress")

		w := doJSON(handler, http.MethodPost, "/dispute", input)

		assert.Equal(http.StatusOK, w.Code)
		assert.Empty(sender.notifications)
	})

	t.Run("unknown creator address means no notification", func(t *testing.T) {
		assert := assert.New(t)

		sender := &fakeSender{configured: true}
		reg := &fakeRegistrar{disputeResult: story.DisputeResult{DisputeID: "9", TxHash: "0xtx"}}
		handler := raiseDispute(newFakeUserRepo(), &fakeDisputeRepo{}, newFakeUploader(), fakeStoryF(reg), sender)

		w := doJSON(handler, http.MethodPost, "/dispute", validDisputeInput())

		assert.Equal(http.StatusOK, w.Code)
		assert.Empty(sender.notifications)
	})

	t.Run("unconfigured sender skips notification", func(t *testing.T) {
		assert := assert.New(t)

		sender := &fakeSender{configured: false}
		reg := &fakeRegistrar{disputeResult: story.DisputeResult{DisputeID: "9", TxHash: "0xtx"}}
		handler := raiseDispute(newFakeUserRepo(disputeOwner()), &fakeDisputeRepo{}, newFakeUploader(), fakeStoryF(reg), sender)

		w := doJSON(handler, http.MethodPost, "/dispute", validDisputeInput())

		assert.Equal(http.StatusOK, w.Code)
		assert.Empty(sender.notifications)
	})
}
