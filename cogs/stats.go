package cogs

import (
	"fmt"

	"boombot/utils"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// StatsCog serves the stats view and the administrative adjust command.
type StatsCog struct {
	Ledger *utils.LedgerStore
}

// RegisterStatsCommands returns the stats slash command definitions.
func RegisterStatsCommands() []*discordgo.ApplicationCommand {
	var minAmount float64 = 0
	return []*discordgo.ApplicationCommand{
		{
			Name:        "stats",
			Description: "View explosion stats and level",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Member to inspect (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:        "statsedit",
			Description: "Adjust a member's explosion or XP counters (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Member to adjust",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "field",
					Description: "Counter to adjust",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "explosions", Value: string(utils.FieldExplosions)},
						{Name: "xp", Value: string(utils.FieldXP)},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "op",
					Description: "How to apply the amount",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "add", Value: string(utils.OpAdd)},
						{Name: "remove", Value: string(utils.OpRemove)},
						{Name: "set", Value: string(utils.OpSet)},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Non-negative amount",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
	}
}

// HandleStats renders a member's record.
func (sc *StatsCog) HandleStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	target := i.Member.User
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "member" {
			target = opt.UserValue(s)
		}
	}

	rec := sc.Ledger.GetOrDefault(i.GuildID, target.ID)
	nextXP := utils.XPForLevel(rec.Level + 1)

	embed := utils.CreateBrandedEmbed(fmt.Sprintf("💥 %s's Stats", target.Username), "", 0)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Explosions", Value: fmt.Sprintf("%d", rec.Explosions), Inline: true},
		{Name: "Level", Value: fmt.Sprintf("%d", rec.Level), Inline: true},
		{Name: "XP", Value: fmt.Sprintf("%d / %d", rec.XP, nextXP), Inline: true},
	}
	if err := utils.SendInteractionResponse(s, i, embed, nil, false); err != nil {
		log.Warnf("stats: failed to respond: %v", err)
	}
}

// HandleStatsEdit applies an administrative adjustment.
func (sc *StatsCog) HandleStatsEdit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member.Permissions&discordgo.PermissionAdministrator == 0 {
		utils.RespondError(s, i, "You need the Administrator permission to edit stats.")
		return
	}

	var (
		target *discordgo.User
		field  utils.AdjustField
		op     utils.AdjustOp
		amount int64
	)
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "member":
			target = opt.UserValue(s)
		case "field":
			field = utils.AdjustField(opt.StringValue())
		case "op":
			op = utils.AdjustOp(opt.StringValue())
		case "amount":
			amount = opt.IntValue()
		}
	}
	if target == nil {
		utils.RespondError(s, i, "No member given.")
		return
	}

	rec, err := sc.Ledger.Adjust(i.GuildID, target.ID, field, op, amount)
	if err != nil {
		utils.RespondError(s, i, fmt.Sprintf("Adjustment failed: %v", err))
		return
	}

	embed := utils.CreateBrandedEmbed("Stats Updated",
		fmt.Sprintf("<@%s> now has **%d** explosions, **%d** XP (level %d).",
			target.ID, rec.Explosions, rec.XP, rec.Level), 0x00FF00)
	if err := utils.SendInteractionResponse(s, i, embed, nil, true); err != nil {
		log.Warnf("statsedit: failed to respond: %v", err)
	}
}
