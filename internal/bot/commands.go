package bot

import "github.com/bwmarrin/discordgo"

var (
	adminPermission int64 = discordgo.PermissionAdministrator
	manageGuild     int64 = discordgo.PermissionManageServer
)

func commandLocales(en, es string) *map[discordgo.Locale]string {
	return &map[discordgo.Locale]string{
		discordgo.EnglishUS: en,
		discordgo.SpanishES: es,
	}
}

func optionLocales(en, es string) map[discordgo.Locale]string {
	return map[discordgo.Locale]string{
		discordgo.EnglishUS: en,
		discordgo.SpanishES: es,
	}
}

func floatPtr(v float64) *float64 { return &v }

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:                     "sorteo",
			Description:              "Crea un sorteo",
			DescriptionLocalizations: commandLocales("Create a giveaway", "Crea un sorteo"),
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:                     discordgo.ApplicationCommandOptionString,
					Name:                     "premio",
					Description:              "Premio del sorteo",
					DescriptionLocalizations: optionLocales("Prize", "Premio del sorteo"),
					Required:                 true,
					MaxLength:                256,
				},
				{
					Type:                     discordgo.ApplicationCommandOptionString,
					Name:                     "duracion",
					Description:              "Duración (ej: 30s, 5m, 1h, 2d, 1h30m)",
					DescriptionLocalizations: optionLocales("Duration (e.g. 30s, 5m, 1h, 2d, 1h30m)", "Duración (ej: 30s, 5m, 1h, 2d, 1h30m)"),
					Required:                 true,
				},
				{
					Type:                     discordgo.ApplicationCommandOptionInteger,
					Name:                     "ganadores",
					Description:              "Cantidad de ganadores",
					DescriptionLocalizations: optionLocales("Number of winners", "Cantidad de ganadores"),
					Required:                 true,
					MinValue:                 floatPtr(1),
					MaxValue:                 100,
				},
				{
					Type:                     discordgo.ApplicationCommandOptionChannel,
					Name:                     "canal",
					Description:              "Canal donde se publica el sorteo",
					DescriptionLocalizations: optionLocales("Channel to post the giveaway in", "Canal donde se publica el sorteo"),
					Required:                 true,
					ChannelTypes:             []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews},
				},
				{
					Type:                     discordgo.ApplicationCommandOptionUser,
					Name:                     "host",
					Description:              "Anfitrión del sorteo",
					DescriptionLocalizations: optionLocales("Giveaway host", "Anfitrión del sorteo"),
				},
				{
					Type:                     discordgo.ApplicationCommandOptionRole,
					Name:                     "rol_requerido",
					Description:              "Rol necesario para participar",
					DescriptionLocalizations: optionLocales("Role required to enter", "Rol necesario para participar"),
				},
				{
					Type:                     discordgo.ApplicationCommandOptionRole,
					Name:                     "rol_excluido",
					Description:              "Rol que no puede participar",
					DescriptionLocalizations: optionLocales("Role that cannot enter", "Rol que no puede participar"),
				},
				{
					Type:                     discordgo.ApplicationCommandOptionInteger,
					Name:                     "mensajes_minimos",
					Description:              "Mensajes mínimos en el servidor",
					DescriptionLocalizations: optionLocales("Minimum messages in the server", "Mensajes mínimos en el servidor"),
					MinValue:                 floatPtr(0),
					MaxValue:                 1000,
				},
				{
					Type:                     discordgo.ApplicationCommandOptionInteger,
					Name:                     "invites_requeridos",
					Description:              "Usos de invitación necesarios",
					DescriptionLocalizations: optionLocales("Invite uses required", "Usos de invitación necesarios"),
					MinValue:                 floatPtr(0),
					MaxValue:                 1000,
				},
			},
		},
		{
			Name:                     "rerroll",
			Description:              "Vuelve a sortear los ganadores de un sorteo terminado",
			DescriptionLocalizations: commandLocales("Redraw the winners of an ended giveaway", "Vuelve a sortear los ganadores de un sorteo terminado"),
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:                     discordgo.ApplicationCommandOptionString,
					Name:                     "sorteo_id",
					Description:              "ID del sorteo (por defecto el último terminado)",
					DescriptionLocalizations: optionLocales("Giveaway id (defaults to the latest ended)", "ID del sorteo (por defecto el último terminado)"),
				},
				{
					Type:                     discordgo.ApplicationCommandOptionInteger,
					Name:                     "cantidad",
					Description:              "Cantidad de ganadores a elegir",
					DescriptionLocalizations: optionLocales("Number of winners to draw", "Cantidad de ganadores a elegir"),
					MinValue:                 floatPtr(1),
					MaxValue:                 100,
				},
			},
		},
		{
			Name:                     "sorteoexp",
			Description:              "Expulsa a un participante de un sorteo activo",
			DescriptionLocalizations: commandLocales("Remove a participant from an active giveaway", "Expulsa a un participante de un sorteo activo"),
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:                     discordgo.ApplicationCommandOptionUser,
					Name:                     "usuario",
					Description:              "Participante a expulsar",
					DescriptionLocalizations: optionLocales("Participant to remove", "Participante a expulsar"),
					Required:                 true,
				},
				{
					Type:                     discordgo.ApplicationCommandOptionString,
					Name:                     "sorteo_id",
					Description:              "ID del sorteo (por defecto el último activo)",
					DescriptionLocalizations: optionLocales("Giveaway id (defaults to the latest active)", "ID del sorteo (por defecto el último activo)"),
				},
			},
		},
		{
			Name:                     "giveaways",
			Description:              "Lista los sorteos activos",
			DescriptionLocalizations: commandLocales("List active giveaways", "Lista los sorteos activos"),
		},
		{
			Name:                     "automod",
			Description:              "Configura la automoderación",
			DescriptionLocalizations: commandLocales("Configure automod", "Configura la automoderación"),
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:                     discordgo.ApplicationCommandOptionSubCommand,
					Name:                     "toggle",
					Description:              "Activa o desactiva la automoderación",
					DescriptionLocalizations: optionLocales("Turn automod on or off", "Activa o desactiva la automoderación"),
				},
				{
					Type:                     discordgo.ApplicationCommandOptionSubCommand,
					Name:                     "maxmentions",
					Description:              "Máximo de menciones por mensaje",
					DescriptionLocalizations: optionLocales("Maximum mentions per message", "Máximo de menciones por mensaje"),
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "cantidad",
							Description: "Cantidad",
							Required:    true,
							MinValue:    floatPtr(1),
							MaxValue:    25,
						},
					},
				},
				{
					Type:                     discordgo.ApplicationCommandOptionSubCommand,
					Name:                     "addword",
					Description:              "Añade palabras prohibidas (separadas por comas)",
					DescriptionLocalizations: optionLocales("Add banned words (comma separated)", "Añade palabras prohibidas (separadas por comas)"),
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "palabra", Description: "Palabra", Required: true},
					},
				},
				{
					Type:                     discordgo.ApplicationCommandOptionSubCommand,
					Name:                     "removeword",
					Description:              "Quita una palabra prohibida",
					DescriptionLocalizations: optionLocales("Remove a banned word", "Quita una palabra prohibida"),
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "palabra", Description: "Palabra", Required: true},
					},
				},
				{
					Type:                     discordgo.ApplicationCommandOptionSubCommand,
					Name:                     "ignorerole",
					Description:              "Ignora o deja de ignorar un rol",
					DescriptionLocalizations: optionLocales("Toggle ignoring a role", "Ignora o deja de ignorar un rol"),
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionRole, Name: "rol", Description: "Rol", Required: true},
					},
				},
				{
					Type:                     discordgo.ApplicationCommandOptionSubCommand,
					Name:                     "ignoreuser",
					Description:              "Ignora o deja de ignorar un usuario",
					DescriptionLocalizations: optionLocales("Toggle ignoring a user", "Ignora o deja de ignorar un usuario"),
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "usuario", Description: "Usuario", Required: true},
					},
				},
				{
					Type:                     discordgo.ApplicationCommandOptionSubCommand,
					Name:                     "blockdomain",
					Description:              "Bloquea enlaces a un dominio",
					DescriptionLocalizations: optionLocales("Block links to a domain", "Bloquea enlaces a un dominio"),
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "dominio", Description: "Dominio", Required: true},
					},
				},
				{
					Type:                     discordgo.ApplicationCommandOptionSubCommand,
					Name:                     "unblockdomain",
					Description:              "Desbloquea un dominio",
					DescriptionLocalizations: optionLocales("Unblock a domain", "Desbloquea un dominio"),
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "dominio", Description: "Dominio", Required: true},
					},
				},
			},
		},
		{
			Name:                     "autorole",
			Description:              "Roles asignados a los nuevos miembros",
			DescriptionLocalizations: commandLocales("Roles given to new members", "Roles asignados a los nuevos miembros"),
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Añade un rol automático",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionRole, Name: "rol", Description: "Rol", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Quita un rol automático",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionRole, Name: "rol", Description: "Rol", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Lista los roles automáticos",
				},
			},
		},
		{
			Name:                     "logs",
			Description:              "Canal de registros",
			DescriptionLocalizations: commandLocales("Set the log channel", "Canal de registros"),
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:                     discordgo.ApplicationCommandOptionChannel,
					Name:                     "canal",
					Description:              "Canal",
					DescriptionLocalizations: optionLocales("Channel", "Canal"),
					Required:                 true,
					ChannelTypes:             []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
			},
		},
		{
			Name:                     "language",
			Description:              "Idioma del bot",
			DescriptionLocalizations: commandLocales("Bot language", "Idioma del bot"),
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "value",
					Description: "es o en",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Español", Value: "es"},
						{Name: "English", Value: "en"},
					},
				},
			},
		},
		{
			Name:                     "report",
			Description:              "Reporte de actividad",
			DescriptionLocalizations: commandLocales("Activity report", "Reporte de actividad"),
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "periodo",
					Description: "day o week",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "day", Value: "day"},
						{Name: "week", Value: "week"},
					},
				},
			},
		},
		{
			Name:                     "ping",
			Description:              "Latencia del bot",
			DescriptionLocalizations: commandLocales("Bot latency", "Latencia del bot"),
		},
	}
}

// registerCommands creates missing commands, edits existing ones and deletes
// anything no longer defined, globally and in every joined guild.
func (b *Bot) registerCommands() error {
	commands := commandDefinitions()

	appID := b.session.State.User.ID
	existing, err := b.session.ApplicationCommands(appID, "")
	if err != nil {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
				return err
			}
		}
		return nil
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{})
	for _, cmd := range commands {
		desired[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := b.session.ApplicationCommandEdit(appID, "", current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		_ = b.session.ApplicationCommandDelete(appID, "", cmd.ID)
	}

	for _, guild := range b.session.State.Guilds {
		if guild == nil {
			continue
		}
		guildCmds, err := b.session.ApplicationCommands(appID, guild.ID)
		if err != nil {
			continue
		}
		for _, cmd := range guildCmds {
			if _, ok := desired[cmd.Name]; ok {
				continue
			}
			_ = b.session.ApplicationCommandDelete(appID, guild.ID, cmd.ID)
		}
	}
	return nil
}
