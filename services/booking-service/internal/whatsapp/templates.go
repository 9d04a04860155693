package whatsapp

import (
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

const dateLayout = "02/01/2006 às 15:04"

const (
	ReplyConfirmed = "✅ Agendamento confirmado! Obrigado. Te esperamos no horário marcado! 😊"
	ReplyCanceled  = "❌ Agendamento cancelado. Se precisar reagendar, entre em contato conosco."
)

func confirmationText(n model.Notice, loc *time.Location) string {
	return fmt.Sprintf(`🎉 *Agendamento Confirmado!*

Olá, %s! 

Seu agendamento foi realizado com sucesso! ✅

📋 *Detalhes:*
🔹 Serviço: %s
🔹 Data/Hora: %s
🔹 Duração: %d minutos

📍 Aguardamos você! 

_Em caso de dúvidas, entre em contato conosco._`,
		n.DisplayName(), n.Specialty, n.Start.In(loc).Format(dateLayout), n.DurationMinutes)
}

func adminConfirmationText(n model.Notice, loc *time.Location) string {
	return fmt.Sprintf(`✅ *Agendamento Confirmado pela Empresa!*

Olá, %s! 

Confirmamos seu agendamento! 🎉

📋 *Detalhes:*
🔹 Serviço: %s
🔹 Data/Hora: %s
🔹 Duração: %d minutos

📍 Seu horário está confirmado! Te esperamos no dia e hora marcados.

💬 *Importante:* Se precisar cancelar ou reagendar, entre em contato conosco com antecedência.

_Obrigado pela preferência!_ 😊`,
		n.DisplayName(), n.Specialty, n.Start.In(loc).Format(dateLayout), n.DurationMinutes)
}

func reminderText(n model.Notice, loc *time.Location) string {
	return fmt.Sprintf(`⏰ *Lembrete de Agendamento*

Olá, %s! 

Você tem um agendamento marcado para amanhã! 📅

📋 *Detalhes:*
🔹 Serviço: %s
🔹 Data/Hora: %s
🔹 Duração: %d minutos

❓ *Confirma sua presença?*
➡️ Responda *SIM* para confirmar
➡️ Responda *NÃO* para cancelar

_Aguardamos sua confirmação!_ 😊`,
		n.DisplayName(), n.Specialty, n.Start.In(loc).Format(dateLayout), n.DurationMinutes)
}

// ParseReply reads a client's answer to a reminder. ok is false for anything that is
// not a yes or a no.
func ParseReply(text string) (confirm bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "sim", "s":
		return true, true
	case "não", "nao", "n":
		return false, true
	}
	return false, false
}
