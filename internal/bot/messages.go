package bot

import (
	"fmt"

	"community-assistant/internal/giveaway"
)

var messages = map[string]map[string]string{
	"es": {
		"giveaway_title":           "🎉 SORTEO",
		"giveaway_ended_title":     "🎉 SORTEO TERMINADO",
		"giveaway_desc":            "**Premio:** %s\n**Ganadores:** %d\n**Host:** %s\n**Termina:** <t:%d:R>\n\n¡Pulsa 🎉 para participar!",
		"giveaway_ended_desc":      "**Premio:** %s\n**Ganadores:** %s\n**Host:** %s",
		"giveaway_footer":          "Termina el",
		"giveaway_ended_footer":    "Sorteo finalizado",
		"field_requirements":       "Requisitos",
		"field_participants":       "Participantes",
		"field_invites":            "Invites requeridos",
		"req_none":                 "Ninguno",
		"req_messages":             "Mensajes mínimos: %d",
		"req_role":                 "Rol requerido: <@&%s>",
		"req_excluded":             "Rol bloqueado: <@&%s>",
		"req_invites":              "%d invite(s)",
		"button_join":              "Participar",
		"button_participants":      "Participantes",
		"button_leave":             "Salir del sorteo",
		"nobody":                   "Nadie participó",
		"winners_notice":           "¡Felicitaciones %s! Han ganado: **%s**",
		"reroll_notice":            "🔁 Nuevo sorteo de ganadores solicitado por <@%s>. ¡Felicitaciones %s! Han ganado: **%s**",
		"expel_notice":             "<@%s> fue removido del sorteo por <@%s>.",
		"join_ok":                  "✅ ¡Has entrado al sorteo!",
		"leave_confirm":            "¿Estás seguro de salir del sorteo?",
		"leave_ok":                 "❌ Has abandonado el sorteo.",
		"leave_not_member":         "⚠️ Ya no estás participando en este sorteo.",
		"leave_unavailable":        "❌ Este sorteo ya no está disponible.",
		"bad_request":              "❌ No se pudo procesar tu solicitud.",
		"participants_title":       "📋 Participantes del sorteo",
		"participants_empty":       "No hay participantes registrados todavía.",
		"participants_total":       "Total",
		"created_title":            "Sorteo creado",
		"created_desc":             "El sorteo de **%s** se publicó en <#%s>.",
		"reroll_title":             "Reroll ejecutado",
		"reroll_desc":              "Se eligieron **%d** nuevo(s) ganador(es) para **%s**.",
		"expel_title":              "Participante expulsado",
		"expel_desc":               "Se removió a <@%s> del sorteo de **%s**.",
		"field_giveaway_id":        "Sorteo ID",
		"field_channel":            "Canal",
		"field_winners":            "Ganadores",
		"field_ends":               "Termina",
		"list_title":               "Sorteos activos",
		"list_empty":               "No hay sorteos activos.",
		"error_title":              "Error",
		"error_create":             "Error al crear el sorteo",
		"error_reroll":             "Error al rerrollear",
		"error_expel":              "Error al expulsar",
		"error_only_guild":         "Este comando solo funciona dentro de un servidor.",
		"error_unknown":            "Ocurrió un error inesperado.",
		"error_no_permission":      "Necesitas permisos de Administrador o Gestionar servidor para usar este comando.",
		"code_not_found":           "No se encontró el sorteo solicitado.",
		"code_ended":               "❌ Este sorteo ya ha terminado.",
		"code_not_ended":           "El sorteo aún está activo. Solo se puede rerrollear cuando haya finalizado.",
		"code_no_participants":     "Ese sorteo no tiene participantes registrados.",
		"code_insufficient":        "No hay suficientes participantes para seleccionar esa cantidad de ganadores.",
		"code_invalid_winners":     "La cantidad de ganadores no es válida (1-%d).",
		"code_invalid_duration":    "Duración del sorteo inválida. Usa valores como 30s, 5m, 1h, 2d o 1h30m.",
		"code_user_not_in":         "El usuario indicado no está participando en este sorteo.",
		"code_user_required":       "Debes indicar un usuario válido.",
		"code_channel_unavailable": "No se pudo acceder al canal del sorteo. Revisa los permisos del bot.",
		"code_eligibility_unknown": "❌ No se pudieron verificar tus requisitos. Asegúrate de que el bot pueda ver roles e invites.",
		"code_stopped":             "El bot se está apagando. Inténtalo de nuevo en unos minutos.",
		"code_activity":            "❌ Necesitas tener al menos %d mensajes en el servidor para participar. Actualmente tienes %d mensajes.",
		"code_required_role":       "❌ Necesitas el rol <@&%s> para participar en este sorteo.",
		"code_excluded_role":       "❌ El rol <@&%s> no puede participar en este sorteo.",
		"code_invites":             "❌ Necesitas al menos %d invite(s) (usos) para participar.",
		"automod_title":            "Automoderación",
		"automod_toggled_on":       "✅ La automoderación ha sido activada.",
		"automod_toggled_off":      "✅ La automoderación ha sido desactivada.",
		"automod_maxmentions":      "✅ El máximo de menciones ha sido establecido a %d.",
		"automod_word_added":       "✅ Palabras añadidas: %s",
		"automod_word_removed":     "✅ Palabra removida: %s",
		"automod_word_missing":     "⚠️ Esa palabra no estaba en la lista.",
		"automod_word_required":    "❌ Debes proporcionar al menos una palabra.",
		"automod_ignored_on":       "✅ %s ahora es ignorado por la automoderación.",
		"automod_ignored_off":      "✅ %s ya no es ignorado por la automoderación.",
		"automod_domain_added":     "✅ Dominio bloqueado: %s",
		"automod_domain_removed":   "✅ Dominio desbloqueado: %s",
		"automod_domain_invalid":   "❌ Dominio inválido.",
		"automod_warn_mentions":    "⚠️ <@%s>, no se permiten más de %d menciones por mensaje.",
		"automod_warn_words":       "⚠️ <@%s>, tu mensaje contiene palabras prohibidas.",
		"automod_warn_links":       "⚠️ <@%s>, ese enlace no está permitido aquí.",
		"automod_warn_flood":       "⚠️ <@%s>, estás enviando mensajes demasiado rápido.",
		"autorole_title":           "Autorol",
		"autorole_added":           "✅ El rol <@&%s> se asignará a los nuevos miembros.",
		"autorole_removed":         "✅ El rol <@&%s> ya no se asignará.",
		"autorole_missing":         "⚠️ Ese rol no estaba configurado.",
		"autorole_empty":           "No hay roles automáticos configurados.",
		"logs_title":               "Registros",
		"logs_set":                 "✅ Los registros se enviarán a <#%s>.",
		"language_title":           "Idioma",
		"language_set":             "✅ Idioma establecido: %s",
		"report_title":             "Reporte",
		"report_desc":              "Actividad registrada (%s)",
		"report_day":               "últimas 24 horas",
		"report_week":              "últimos 7 días",
		"field_total":              "Total",
		"field_levels":             "Niveles",
		"field_top_events":         "Eventos frecuentes",
		"field_giveaways":          "Sorteos",
		"report_giveaways":         "Creados: %d | Terminados: %d | Rerolls: %d | Expulsiones: %d",
		"ping":                     "🏓 Pong! Latencia: %dms",
		"audit_title":              "Registro",
		"field_event":              "Evento",
		"field_level":              "Nivel",
		"field_user":               "Usuario",
		"field_details":            "Detalles",
		"value_system":             "Sistema",
	},
	"en": {
		"giveaway_title":           "🎉 GIVEAWAY",
		"giveaway_ended_title":     "🎉 GIVEAWAY ENDED",
		"giveaway_desc":            "**Prize:** %s\n**Winners:** %d\n**Host:** %s\n**Ends:** <t:%d:R>\n\nPress 🎉 to enter!",
		"giveaway_ended_desc":      "**Prize:** %s\n**Winners:** %s\n**Host:** %s",
		"giveaway_footer":          "Ends at",
		"giveaway_ended_footer":    "Giveaway finished",
		"field_requirements":       "Requirements",
		"field_participants":       "Participants",
		"field_invites":            "Required invites",
		"req_none":                 "None",
		"req_messages":             "Minimum messages: %d",
		"req_role":                 "Required role: <@&%s>",
		"req_excluded":             "Blocked role: <@&%s>",
		"req_invites":              "%d invite(s)",
		"button_join":              "Enter",
		"button_participants":      "Participants",
		"button_leave":             "Leave giveaway",
		"nobody":                   "Nobody entered",
		"winners_notice":           "Congratulations %s! You won: **%s**",
		"reroll_notice":            "🔁 Winners redrawn at the request of <@%s>. Congratulations %s! You won: **%s**",
		"expel_notice":             "<@%s> was removed from the giveaway by <@%s>.",
		"join_ok":                  "✅ You entered the giveaway!",
		"leave_confirm":            "Are you sure you want to leave the giveaway?",
		"leave_ok":                 "❌ You left the giveaway.",
		"leave_not_member":         "⚠️ You are no longer in this giveaway.",
		"leave_unavailable":        "❌ This giveaway is no longer available.",
		"bad_request":              "❌ Your request could not be processed.",
		"participants_title":       "📋 Giveaway participants",
		"participants_empty":       "No participants yet.",
		"participants_total":       "Total",
		"created_title":            "Giveaway created",
		"created_desc":             "The **%s** giveaway was posted in <#%s>.",
		"reroll_title":             "Reroll done",
		"reroll_desc":              "Drew **%d** new winner(s) for **%s**.",
		"expel_title":              "Participant removed",
		"expel_desc":               "Removed <@%s> from the **%s** giveaway.",
		"field_giveaway_id":        "Giveaway ID",
		"field_channel":            "Channel",
		"field_winners":            "Winners",
		"field_ends":               "Ends",
		"list_title":               "Active giveaways",
		"list_empty":               "There are no active giveaways.",
		"error_title":              "Error",
		"error_create":             "Could not create the giveaway",
		"error_reroll":             "Reroll failed",
		"error_expel":              "Removal failed",
		"error_only_guild":         "This command only works inside a server.",
		"error_unknown":            "An unexpected error occurred.",
		"error_no_permission":      "You need Administrator or Manage Server permission to use this command.",
		"code_not_found":           "The requested giveaway was not found.",
		"code_ended":               "❌ This giveaway has already ended.",
		"code_not_ended":           "The giveaway is still running. Rerolls are only possible after it ends.",
		"code_no_participants":     "That giveaway has no participants.",
		"code_insufficient":        "There are not enough participants to pick that many winners.",
		"code_invalid_winners":     "The winner count is not valid (1-%d).",
		"code_invalid_duration":    "Invalid duration. Use values like 30s, 5m, 1h, 2d or 1h30m.",
		"code_user_not_in":         "That user is not in this giveaway.",
		"code_user_required":       "You must name a valid user.",
		"code_channel_unavailable": "The giveaway channel could not be reached. Check the bot's permissions.",
		"code_eligibility_unknown": "❌ Your requirements could not be verified. Make sure the bot can see roles and invites.",
		"code_stopped":             "The bot is shutting down. Try again in a few minutes.",
		"code_activity":            "❌ You need at least %d messages in this server to enter. You currently have %d.",
		"code_required_role":       "❌ You need the <@&%s> role to enter this giveaway.",
		"code_excluded_role":       "❌ The <@&%s> role cannot enter this giveaway.",
		"code_invites":             "❌ You need at least %d invite use(s) to enter.",
		"automod_title":            "Automod",
		"automod_toggled_on":       "✅ Automod is now enabled.",
		"automod_toggled_off":      "✅ Automod is now disabled.",
		"automod_maxmentions":      "✅ Mention limit set to %d.",
		"automod_word_added":       "✅ Words added: %s",
		"automod_word_removed":     "✅ Word removed: %s",
		"automod_word_missing":     "⚠️ That word was not on the list.",
		"automod_word_required":    "❌ Provide at least one word.",
		"automod_ignored_on":       "✅ %s is now ignored by automod.",
		"automod_ignored_off":      "✅ %s is no longer ignored by automod.",
		"automod_domain_added":     "✅ Domain blocked: %s",
		"automod_domain_removed":   "✅ Domain unblocked: %s",
		"automod_domain_invalid":   "❌ Invalid domain.",
		"automod_warn_mentions":    "⚠️ <@%s>, no more than %d mentions per message.",
		"automod_warn_words":       "⚠️ <@%s>, your message contains banned words.",
		"automod_warn_links":       "⚠️ <@%s>, that link is not allowed here.",
		"automod_warn_flood":       "⚠️ <@%s>, you are sending messages too fast.",
		"autorole_title":           "Autorole",
		"autorole_added":           "✅ <@&%s> will be given to new members.",
		"autorole_removed":         "✅ <@&%s> will no longer be given.",
		"autorole_missing":         "⚠️ That role was not configured.",
		"autorole_empty":           "No autoroles configured.",
		"logs_title":               "Logs",
		"logs_set":                 "✅ Logs will be sent to <#%s>.",
		"language_title":           "Language",
		"language_set":             "✅ Language set: %s",
		"report_title":             "Report",
		"report_desc":              "Recorded activity (%s)",
		"report_day":               "last 24 hours",
		"report_week":              "last 7 days",
		"field_total":              "Total",
		"field_levels":             "Levels",
		"field_top_events":         "Top events",
		"field_giveaways":          "Giveaways",
		"report_giveaways":         "Created: %d | Ended: %d | Rerolls: %d | Removals: %d",
		"ping":                     "🏓 Pong! Latency: %dms",
		"audit_title":              "Log entry",
		"field_event":              "Event",
		"field_level":              "Level",
		"field_user":               "User",
		"field_details":            "Details",
		"value_system":             "System",
	},
}

func translate(lang, key string, args ...any) string {
	table, ok := messages[lang]
	if !ok {
		table = messages["es"]
	}
	text, ok := table[key]
	if !ok {
		text, ok = messages["es"][key]
		if !ok {
			return key
		}
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}

func (b *Bot) t(lang, key string, args ...any) string {
	return translate(lang, key, args...)
}

// codeKeys maps every engine code to its message. Declined-join codes take
// arguments filled in by errorText.
var codeKeys = map[giveaway.Code]string{
	giveaway.CodeNotFound:             "code_not_found",
	giveaway.CodeEnded:                "code_ended",
	giveaway.CodeNotEnded:             "code_not_ended",
	giveaway.CodeNoParticipants:       "code_no_participants",
	giveaway.CodeInsufficientEntrants: "code_insufficient",
	giveaway.CodeInvalidWinnerCount:   "code_invalid_winners",
	giveaway.CodeInvalidDuration:      "code_invalid_duration",
	giveaway.CodeUserNotInGiveaway:    "code_user_not_in",
	giveaway.CodeUserRequired:         "code_user_required",
	giveaway.CodeChannelUnavailable:   "code_channel_unavailable",
	giveaway.CodeEligibilityUnknown:   "code_eligibility_unknown",
	giveaway.CodeStopped:              "code_stopped",
	giveaway.CodeInsufficientActivity: "code_activity",
	giveaway.CodeMissingRequiredRole:  "code_required_role",
	giveaway.CodeHasExcludedRole:      "code_excluded_role",
	giveaway.CodeInsufficientInvites:  "code_invites",
}

// errorContext carries the numbers some messages quote back to the user.
type errorContext struct {
	terms      giveaway.Terms
	activity   int
	maxWinners int
}

func errorText(lang string, err error, ec errorContext) string {
	code := giveaway.CodeOf(err)
	key, ok := codeKeys[code]
	if !ok {
		return translate(lang, "error_unknown")
	}
	switch code {
	case giveaway.CodeInvalidWinnerCount:
		return translate(lang, key, ec.maxWinners)
	case giveaway.CodeInsufficientActivity:
		return translate(lang, key, ec.terms.MinMessages, ec.activity)
	case giveaway.CodeMissingRequiredRole:
		return translate(lang, key, ec.terms.RequiredRoleID)
	case giveaway.CodeHasExcludedRole:
		return translate(lang, key, ec.terms.ExcludedRoleID)
	case giveaway.CodeInsufficientInvites:
		return translate(lang, key, ec.terms.RequiredInvites)
	default:
		return translate(lang, key)
	}
}
