// Package workerconfig loads the bundled worker-bootstrap XML document and
// exposes it as the JSON body /worker_config serves (spec.md §4.4). There is
// no third-party XML library anywhere in the retrieved dependency pack, so
// this is the one place the Dispatch API reaches for encoding/xml directly.
package workerconfig

import (
	"embed"
	"encoding/xml"

	"github.com/noctiluca/rendermanager/internal/logging"
)

//go:embed worker_config.xml
var bundled embed.FS

type xmlConfig struct {
	XMLName xml.Name `xml:"config"`
	Manager struct {
		IP   string `xml:"ip"`
		Port int    `xml:"port"`
	} `xml:"manager"`
	Identity struct {
		Name string `xml:"name"`
	} `xml:"identity"`
	Blender struct {
		Path string `xml:"path"`
	} `xml:"blender"`
}

// Config is the JSON shape /worker_config returns.
type Config struct {
	ManagerIP   string `json:"manager_ip"`
	ManagerPort int    `json:"manager_port"`
	WorkerName  string `json:"worker_name"`
	BlenderPath string `json:"blender_path"`
}

// Load parses the bundled XML document. It is read fresh on every call
// (spec.md §4.4: "read lazily on /worker_config requests") rather than
// cached at startup, so an operator can swap the embedded file's contents
// between builds without touching any other code path.
func Load() (Config, error) {
	data, err := bundled.ReadFile("worker_config.xml")
	if err != nil {
		logging.ErrorWithComponent(logging.ComponentWorkerConf, "failed to read bundled worker config", "error", err)
		return Config{}, err
	}

	var xc xmlConfig
	if err := xml.Unmarshal(data, &xc); err != nil {
		logging.ErrorWithComponent(logging.ComponentWorkerConf, "failed to parse worker config xml", "error", err)
		return Config{}, err
	}

	return Config{
		ManagerIP:   xc.Manager.IP,
		ManagerPort: xc.Manager.Port,
		WorkerName:  xc.Identity.Name,
		BlenderPath: xc.Blender.Path,
	}, nil
}
