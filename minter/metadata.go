package minter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/minters-xyz/go-minters/service/persist"
)

const mediaTypePNG = "image/png"

// metadataInput collects the caller-supplied and computed fields the two
// metadata documents are built from
type metadataInput struct {
	Title       string
	Description string
	Prompt      string
	ImageURL    string
	ImageHash   string
	Creators    []persist.Creator
	Attributes  []persist.Attribute
	ParentIPID  string
	CreatedAt   time.Time
}

// buildIPMetadata assembles the asset metadata document referenced on-chain
func buildIPMetadata(in metadataInput) persist.IPMetadata {
	description := in.Description
	if description == "" {
		if in.ParentIPID != "" {
			description = fmt.Sprintf("Evolution of %s", in.ParentIPID)
		} else {
			description = fmt.Sprintf("AI generated image: %s", in.Prompt)
		}
	}

	return persist.IPMetadata{
		Title:       in.Title,
		Description: description,
		CreatedAt:   strconv.FormatInt(in.CreatedAt.Unix(), 10),
		Image:       in.ImageURL,
		ImageHash:   in.ImageHash,
		MediaURL:    in.ImageURL,
		MediaHash:   in.ImageHash,
		MediaType:   mediaTypePNG,
		Creators:    in.Creators,
		ParentIPID:  in.ParentIPID,
	}
}

// buildNFTMetadata assembles the display metadata document, filling in the
// default trait list when the caller supplied none
func buildNFTMetadata(in metadataInput) persist.NFTMetadata {
	description := in.Description
	attributes := in.Attributes

	if in.ParentIPID != "" {
		if description == "" {
			description = fmt.Sprintf("Evolution of %s", in.ParentIPID)
		}
		if len(attributes) == 0 {
			attributes = []persist.Attribute{
				{Key: "Type", Value: "Evolution"},
				{Key: "Parent IP", Value: in.ParentIPID},
			}
		}
	} else {
		if description == "" {
			description = fmt.Sprintf("AI generated NFT: %s", in.Prompt)
		}
		if len(attributes) == 0 {
			attributes = []persist.Attribute{
				{Key: "Model", Value: "Stability AI"},
				{Key: "Prompt", Value: in.Prompt},
				{Key: "Generator", Value: "Minters"},
			}
		}
	}

	return persist.NFTMetadata{
		Name:        in.Title,
		Description: description,
		Image:       in.ImageURL,
		Attributes:  attributes,
	}
}
