package minter

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/minters-xyz/go-minters/service/persist"
	"github.com/minters-xyz/go-minters/util"
)

const anonymousName = "@0xAnnonymous"

type galleryOutput struct {
	IPs []persist.GalleryIP `json:"ips"`
}

// gallery flattens every user's registered assets into one newest-first list,
// decorating each asset with its owner's public profile fields
func gallery(userRepo persist.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		users, err := userRepo.GetAll(ctx)
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		ips := make([]persist.GalleryIP, 0)
		for _, user := range users {
			name := util.FirstNonEmpty(user.Username, user.DisplayName, anonymousName)
			for _, ip := range user.RegisteredIPs {
				ips = append(ips, persist.GalleryIP{
					RegisteredIP:   ip,
					CreatorName:    name,
					CreatorAddress: user.WalletAddress,
					CreatorAvatar:  user.AvatarURL,
				})
			}
		}

		// RFC 3339 timestamps order lexicographically
		sort.SliceStable(ips, func(i, j int) bool {
			return ips[i].RegisteredAt > ips[j].RegisteredAt
		})

		c.JSON(http.StatusOK, galleryOutput{IPs: ips})
	}
}
