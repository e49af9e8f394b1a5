package minter

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/minters-xyz/go-minters/service/persist"
	"github.com/minters-xyz/go-minters/service/story"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func validRegisterInput() map[string]any {
	return map[string]any{
		"imageBuffer":   base64.StdEncoding.EncodeToString([]byte("png-bytes")),
		"imageName":     "Sunset",
		"prompt":        "a sunset over mountains",
		"walletAddress": "0x1111111111111111111111111111111111111111",
		"userId":        "user-1",
		"creators": []map[string]any{
			{"name": "alice", "address": "0x1111111111111111111111111111111111111111", "contributionPercent": 100},
		},
	}
}

func TestRegisterIP(t *testing.T) {
	viper.Set("PINATA_GATEWAY", "gateway.pinata.cloud")
	defer viper.Set("PINATA_GATEWAY", "")

	t.Run("missing required fields", func(t *testing.T) {
		assert := assert.New(t)
		handler := registerIP(newFakeUserRepo(), newFakeUploader(), fakeStoryF(&fakeRegistrar{}), http.DefaultClient)

		w := doJSON(handler, http.MethodPost, "/register-ip", map[string]any{"prompt": "a sunset"})

		assert.Equal(http.StatusBadRequest, w.Code)
		var body map[string]string
		json.Unmarshal(w.Body.Bytes(), &body)
		assert.Contains(body["error"], "invalid or missing fields")
	})

	t.Run("creator shares must sum to 100", func(t *testing.T) {
		assert := assert.New(t)
		reg := &fakeRegistrar{}
		handler := registerIP(newFakeUserRepo(), newFakeUploader(), fakeStoryF(reg), http.DefaultClient)

		input := validRegisterInput()
		input["creators"] = []map[string]any{
			{"name": "alice", "contributionPercent": 60},
			{"name": "bob", "contributionPercent": 60},
		}

		w := doJSON(handler, http.MethodPost, "/register-ip", input)

		assert.Equal(http.StatusBadRequest, w.Code)
		assert.Contains(w.Body.String(), "must sum to 100")
		assert.Zero(reg.mintCalls)
	})

	t.Run("missing gateway is a server error", func(t *testing.T) {
		viper.Set("PINATA_GATEWAY", "")
		defer viper.Set("PINATA_GATEWAY", "gateway.pinata.cloud")

		handler := registerIP(newFakeUserRepo(), newFakeUploader(), fakeStoryF(&fakeRegistrar{}), http.DefaultClient)

		w := doJSON(handler, http.MethodPost, "/register-ip", validRegisterInput())

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("unknown user is rejected before any upload", func(t *testing.T) {
		assert := assert.New(t)

		upld := newFakeUploader()
		handler := registerIP(newFakeUserRepo(), upld, fakeStoryF(&fakeRegistrar{}), http.DefaultClient)

		w := doJSON(handler, http.MethodPost, "/register-ip", validRegisterInput())

		assert.Equal(http.StatusBadRequest, w.Code)
		assert.Empty(upld.uploads)
	})

	t.Run("successful registration", func(t *testing.T) {
		assert := assert.New(t)

		userRepo := newFakeUserRepo(persist.User{ID: "user-1"})
		upld := newFakeUploader()
		reg := &fakeRegistrar{
			registerResult: story.RegisterResult{
				IPID:            "0xip",
				TxHash:          "0xtx",
				LicenseTermsIDs: []string{"42"},
			},
		}
		handler := registerIP(userRepo, upld, fakeStoryF(reg), http.DefaultClient)

		w := doJSON(handler, http.MethodPost, "/register-ip", validRegisterInput())

		assert.Equal(http.StatusOK, w.Code)
		out := decodeBody[registerIPOutput](t, w)
		assert.True(out.Success)
		assert.Equal("0xip", out.IPID)
		assert.Equal("0xtx", out.TxHash)
		assert.Equal("https://aeneid.explorer.story.foundation/ipa/0xip", out.ExplorerURL)
		assert.Equal("QmFake1", out.ImageCID)
		assert.NotEmpty(out.IPMetadataCID)
		assert.NotEmpty(out.NFTMetadataCID)
		assert.Empty(out.MintTxHash)

		// image, ip metadata, nft metadata
		assert.Len(upld.uploads, 3)

		if assert.Len(userRepo.appended, 1) {
			ip := userRepo.appended[0]
			assert.Equal("0xip", ip.IPID)
			assert.Equal([]string{"42"}, ip.LicenseTermsIDs)
			assert.NotEmpty(ip.RegisteredAt)
		}
	})

	t.Run("pinned metadata hashes match pinned bytes", func(t *testing.T) {
		assert := assert.New(t)

		upld := newFakeUploader()
		reg := &fakeRegistrar{registerResult: story.RegisterResult{IPID: "0xip", TxHash: "0xtx"}}
		handler := registerIP(newFakeUserRepo(persist.User{ID: "user-1"}), upld, fakeStoryF(reg), http.DefaultClient)

		w := doJSON(handler, http.MethodPost, "/register-ip", validRegisterInput())
		assert.Equal(http.StatusOK, w.Code)

		ipDoc := upld.uploads["Sunset_ip_metadata.json"]
		assert.NotNil(ipDoc)

		var meta persist.IPMetadata
		assert.NoError(json.Unmarshal(ipDoc, &meta))
		assert.Equal(contentHash([]byte("png-bytes")), meta.ImageHash)
	})

	t.Run("mint requested and best-effort mint fails", func(t *testing.T) {
		assert := assert.New(t)

		userRepo := newFakeUserRepo(persist.User{ID: "user-1"})
		reg := &fakeRegistrar{
			registerResult: story.RegisterResult{IPID: "0xip", TxHash: "0xtx", LicenseTermsIDs: []string{"42"}},
			mintErr:        errBoom,
		}
		handler := registerIP(userRepo, newFakeUploader(), fakeStoryF(reg), http.DefaultClient)

		input := validRegisterInput()
		input["mintLicenseAmount"] = 1

		w := doJSON(handler, http.MethodPost, "/register-ip", input)

		// registration still succeeds
		assert.Equal(http.StatusOK, w.Code)
		assert.Equal(1, reg.mintCalls)
		out := decodeBody[registerIPOutput](t, w)
		assert.True(out.Success)
		assert.Empty(out.MintTxHash)
		assert.Len(userRepo.appended, 1)
	})

	t.Run("mint requested and succeeds", func(t *testing.T) {
		assert := assert.New(t)

		reg := &fakeRegistrar{
			registerResult: story.RegisterResult{IPID: "0xip", TxHash: "0xtx", LicenseTermsIDs: []string{"42"}},
			mintResult:     story.MintResult{TxHash: "0xmint", LicenseTokenIDs: []string{"7"}},
		}
		handler := registerIP(newFakeUserRepo(persist.User{ID: "user-1"}), newFakeUploader(), fakeStoryF(reg), http.DefaultClient)

		input := validRegisterInput()
		input["mintLicenseAmount"] = 1

		w := doJSON(handler, http.MethodPost, "/register-ip", input)

		assert.Equal(http.StatusOK, w.Code)
		out := decodeBody[registerIPOutput](t, w)
		assert.Equal("0xmint", out.MintTxHash)
		assert.Equal([]string{"7"}, out.LicenseTokenIDs)
	})

	t.Run("registration failure surfaces as server error", func(t *testing.T) {
		assert := assert.New(t)

		userRepo := newFakeUserRepo(persist.User{ID: "user-1"})
		reg := &fakeRegistrar{registerErr: errBoom}
		handler := registerIP(userRepo, newFakeUploader(), fakeStoryF(reg), http.DefaultClient)

		w := doJSON(handler, http.MethodPost, "/register-ip", validRegisterInput())

		assert.Equal(http.StatusInternalServerError, w.Code)
		assert.Empty(userRepo.appended)
	})
}

func TestEvolveIP(t *testing.T) {
	viper.Set("PINATA_GATEWAY", "gateway.pinata.cloud")
	defer viper.Set("PINATA_GATEWAY", "")

	validInput := func() map[string]any {
		return map[string]any{
			"imageBuffer":    base64.StdEncoding.EncodeToString([]byte("png-bytes")),
			"imageName":      "Sunset v2",
			"prompt":         "a brighter sunset",
			"walletAddress":  "0x1111111111111111111111111111111111111111",
			"userId":         "user-1",
			"parentIpId":     "0xparent",
			"licenseTermsId": "42",
		}
	}

	t.Run("missing lineage fields", func(t *testing.T) {
		handler := evolveIP(newFakeUserRepo(), newFakeUploader(), fakeStoryF(&fakeRegistrar{}))

		input := validInput()
		delete(input, "parentIpId")
		delete(input, "licenseTermsId")

		w := doJSON(handler, http.MethodPost, "/evolve-ip", input)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown user is rejected before any upload", func(t *testing.T) {
		assert := assert.New(t)

		upld := newFakeUploader()
		handler := evolveIP(newFakeUserRepo(), upld, fakeStoryF(&fakeRegistrar{}))

		w := doJSON(handler, http.MethodPost, "/evolve", validInput())

		assert.Equal(http.StatusBadRequest, w.Code)
		assert.Empty(upld.uploads)
	})

	t.Run("successful evolution", func(t *testing.T) {
		assert := assert.New(t)

		userRepo := newFakeUserRepo(persist.User{ID: "user-1"})
		reg := &fakeRegistrar{derivativeResult: story.RegisterResult{IPID: "0xchild", TxHash: "0xtx"}}
		handler := evolveIP(userRepo, newFakeUploader(), fakeStoryF(reg))

		w := doJSON(handler, http.MethodPost, "/evolve-ip", validInput())

		assert.Equal(http.StatusOK, w.Code)
		out := decodeBody[evolveIPOutput](t, w)
		assert.True(out.Success)
		assert.Equal("0xchild", out.IPID)

		if assert.Len(userRepo.appended, 1) {
			ip := userRepo.appended[0]
			assert.Equal(persist.LicenseTypeEvolution, ip.LicenseType)
			assert.Equal("0xparent", ip.ParentIPID)
		}
	})

	t.Run("derivative mint failure does not fail the registration", func(t *testing.T) {
		assert := assert.New(t)

		userRepo := newFakeUserRepo(persist.User{ID: "user-1"})
		reg := &fakeRegistrar{
			derivativeResult: story.RegisterResult{IPID: "0xchild", TxHash: "0xtx"},
			attachErr:        errBoom,
		}
		handler := evolveIP(userRepo, newFakeUploader(), fakeStoryF(reg))

		input := validInput()
		input["mintLicenseAmount"] = 1

		w := doJSON(handler, http.MethodPost, "/evolve-ip", input)

		assert.Equal(http.StatusOK, w.Code)
		assert.Len(userRepo.appended, 1)
	})
}
